package caselaw

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func caseSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(BuildCaseJSONSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal case schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("case.json", bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("add case schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("case.json")
	})
	return compiledSchema, compileErr
}

// Violation is one schema violation found during validation.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidateDocument checks raw JSON against the case schema. Validation is
// all-or-nothing: any violation rejects the whole document, and every
// violation found is returned so the caller can log the complete list.
func ValidateDocument(raw []byte) ([]Violation, error) {
	schema, err := caseSchema()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCaseValidation, "case schema unavailable")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCaseValidation, "case document is not valid JSON")
	}
	if err := schema.Validate(doc); err != nil {
		violations := collectViolations(err)
		return violations, apperrors.New(apperrors.ErrCodeCaseValidation,
			fmt.Sprintf("case document failed validation with %d violation(s)", len(violations)))
	}
	return nil, nil
}

// ValidateCase round-trips a Case through JSON and validates the result.
// A Case that passes here serialises to a document that passes
// ValidateDocument, so stored cases can be re-validated at read time.
func ValidateCase(c *Case) ([]Violation, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCaseValidation, "marshal case")
	}
	return ValidateDocument(raw)
}

// ParseCase validates raw JSON and decodes it into a Case. Returns the
// violation list alongside the error when validation fails.
func ParseCase(raw []byte) (*Case, []Violation, error) {
	if violations, err := ValidateDocument(raw); err != nil {
		return nil, violations, err
	}
	var c Case
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeCaseValidation, "decode case")
	}
	return &c, nil, nil
}

func collectViolations(err error) []Violation {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Violation{{Path: "/", Message: err.Error()}}
	}
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			path := e.InstanceLocation
			if path == "" {
				path = "/"
			}
			out = append(out, Violation{Path: path, Message: e.Message})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return out
}
