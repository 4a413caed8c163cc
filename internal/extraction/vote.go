package extraction

import (
	"encoding/json"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// MajorityVote reconciles redundant full-document extraction attempts by
// selecting, for each schema field, the most frequent value across all
// valid candidates. Composite values are compared via their canonical JSON
// serialization (object keys sorted), so structurally equal values count
// together regardless of key order in the raw payload.
//
// A field with zero non-null observations stays absent from the result.
// Ties break by arrival order: the first-seen value among the tied set
// wins.
func MajorityVote(fields []string, candidates []Candidate) (map[string]any, error) {
	valid := ValidCandidates(candidates)
	if len(valid) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoCandidates, "no usable extraction candidates to vote on")
	}

	result := map[string]any{}
	for _, field := range fields {
		if value, ok := voteField(field, valid); ok {
			result[field] = value
		}
	}
	return result, nil
}

type tally struct {
	count     int
	firstSeen int
	value     any
}

func voteField(field string, candidates []Candidate) (any, bool) {
	counts := map[string]*tally{}
	order := 0
	for _, c := range candidates {
		value, present := c.Record[field]
		if !present || value == nil {
			continue
		}
		key, err := canonicalize(value)
		if err != nil {
			continue
		}
		if t, ok := counts[key]; ok {
			t.count++
		} else {
			counts[key] = &tally{count: 1, firstSeen: order, value: value}
		}
		order++
	}
	if len(counts) == 0 {
		return nil, false
	}

	var winner *tally
	for _, t := range counts {
		if winner == nil || t.count > winner.count ||
			(t.count == winner.count && t.firstSeen < winner.firstSeen) {
			winner = t
		}
	}
	return winner.value, true
}

// canonicalize produces a deterministic comparison key. encoding/json
// serializes map keys in sorted order, which is exactly the canonical form
// needed here.
func canonicalize(value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
