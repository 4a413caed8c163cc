package extraction

import (
	"reflect"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// DeepMergeByPresence folds candidates into a single mapping. Intended for
// candidates that originate from different, non-overlapping chunks, each
// supplying a disjoint subset of fields.
//
// Merge rules per field:
//   - mapping into mapping: recursive merge
//   - list into list: union by structural equality, existing order kept
//   - scalar: a non-null candidate value overwrites only when it is
//     non-empty or the accumulator's current value is empty. A later,
//     sparser chunk can therefore never erase a populated field.
//
// Error-tagged candidates are skipped. An input with no usable candidate
// fails with ErrCodeNoCandidates.
func DeepMergeByPresence(candidates []Candidate) (map[string]any, error) {
	valid := ValidCandidates(candidates)
	if len(valid) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoCandidates, "no usable extraction candidates to merge")
	}
	acc := map[string]any{}
	for _, c := range valid {
		mergeInto(acc, c.Record)
	}
	return acc, nil
}

func mergeInto(dst, src map[string]any) {
	for key, value := range src {
		switch v := value.(type) {
		case map[string]any:
			if existing, ok := dst[key].(map[string]any); ok {
				mergeInto(existing, v)
				continue
			}
			dst[key] = v
		case []any:
			if existing, ok := dst[key].([]any); ok {
				dst[key] = unionLists(existing, v)
				continue
			}
			dst[key] = v
		case nil:
			// null never overwrites
		default:
			if isTruthy(v) || !isTruthy(dst[key]) {
				dst[key] = v
			}
		}
	}
}

func unionLists(dst, src []any) []any {
	for _, item := range src {
		if !containsValue(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}

func containsValue(list []any, item any) bool {
	for _, existing := range list {
		if reflect.DeepEqual(existing, item) {
			return true
		}
	}
	return false
}

// isTruthy mirrors presence semantics for JSON-decoded values: empty
// strings, zero numbers, false, empty containers and nil are all empty.
func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
