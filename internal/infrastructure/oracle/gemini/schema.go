package gemini

import (
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// toGenaiSchema converts the generic JSON-schema map used by the domain
// layer into the provider's native schema type. Only the subset the
// provider understands survives the conversion: pattern and numeric range
// constraints are dropped here and enforced by post-hoc validation.
func toGenaiSchema(m map[string]any) (*genai.Schema, error) {
	if alts, ok := m["anyOf"].([]map[string]any); ok {
		return fromAlternatives(alts)
	}
	if alts, ok := m["anyOf"].([]any); ok {
		typed := make([]map[string]any, 0, len(alts))
		for _, alt := range alts {
			am, ok := alt.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("anyOf alternative is %T, want object", alt)
			}
			typed = append(typed, am)
		}
		return fromAlternatives(typed)
	}

	typ, _ := m["type"].(string)
	schema := &genai.Schema{}
	if desc, ok := m["description"].(string); ok {
		schema.Description = desc
	}

	switch typ {
	case "object":
		schema.Type = genai.TypeObject
		if props, ok := m["properties"].(map[string]any); ok {
			schema.Properties = make(map[string]*genai.Schema, len(props))
			for name, raw := range props {
				pm, ok := raw.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("property %q is %T, want object", name, raw)
				}
				converted, err := toGenaiSchema(pm)
				if err != nil {
					return nil, fmt.Errorf("property %q: %w", name, err)
				}
				schema.Properties[name] = converted
			}
		}
		schema.Required = stringSlice(m["required"])
	case "array":
		schema.Type = genai.TypeArray
		if items, ok := m["items"].(map[string]any); ok {
			converted, err := toGenaiSchema(items)
			if err != nil {
				return nil, fmt.Errorf("array items: %w", err)
			}
			schema.Items = converted
		}
	case "string":
		schema.Type = genai.TypeString
		schema.Enum = stringSlice(m["enum"])
	case "integer":
		schema.Type = genai.TypeInteger
	case "number":
		schema.Type = genai.TypeNumber
	case "boolean":
		schema.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typ)
	}
	return schema, nil
}

// fromAlternatives handles the nullable encoding: a two-element anyOf of
// the real schema plus {"type": "null"}.
func fromAlternatives(alts []map[string]any) (*genai.Schema, error) {
	var base map[string]any
	nullable := false
	for _, alt := range alts {
		if t, _ := alt["type"].(string); t == "null" {
			nullable = true
			continue
		}
		if base != nil {
			return nil, fmt.Errorf("anyOf with multiple non-null alternatives is not supported")
		}
		base = alt
	}
	if base == nil {
		return nil, fmt.Errorf("anyOf contains no non-null alternative")
	}
	schema, err := toGenaiSchema(base)
	if err != nil {
		return nil, err
	}
	schema.Nullable = nullable
	return schema, nil
}

func stringSlice(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
