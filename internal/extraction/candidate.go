// Package extraction implements the multi-pass structured-extraction and
// result-reconciliation engine: parallel oracle fan-out, candidate
// normalization, and the two reconciliation strategies.
package extraction

import (
	"encoding/json"
	"fmt"

	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// Candidate is the normalized output of one extraction attempt: either a
// structured record or an error marker. Candidates are ephemeral; they are
// created per attempt and consumed immediately by the reconciler.
type Candidate struct {
	// Key identifies the originating work item (chunk sequence or pass
	// index) so results can be re-associated after concurrent execution.
	Key string

	// Record is the parsed payload. Nil when the attempt errored.
	Record map[string]any

	// Err is the error marker for failed attempts.
	Err error
}

// IsError reports whether this candidate carries an error marker instead
// of a usable record.
func (c Candidate) IsError() bool { return c.Err != nil }

// CandidateFromResult normalizes one oracle outcome into a Candidate.
// Payloads whose top-level shape is a single-element list are unwrapped;
// any other non-mapping payload becomes an error marker.
func CandidateFromResult(key string, res oracle.Result) Candidate {
	switch res.Kind {
	case oracle.KindValid:
		record, err := normalizePayload(res.Payload)
		if err != nil {
			return Candidate{Key: key, Err: err}
		}
		return Candidate{Key: key, Record: record}
	case oracle.KindMalformed:
		return Candidate{Key: key, Err: apperrors.Wrap(res.Err, apperrors.ErrCodeOracleMalformed, "malformed oracle payload")}
	default:
		return Candidate{Key: key, Err: apperrors.Wrap(res.Err, apperrors.ErrCodeOracleTransient, "oracle call failed")}
	}
}

func normalizePayload(payload []byte) (map[string]any, error) {
	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleMalformed, "payload is not valid JSON")
	}
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case []any:
		if len(v) == 1 {
			if m, ok := v[0].(map[string]any); ok {
				return m, nil
			}
		}
		return nil, apperrors.New(apperrors.ErrCodeOracleMalformed,
			fmt.Sprintf("payload is a %d-element list, expected a mapping", len(v)))
	default:
		return nil, apperrors.New(apperrors.ErrCodeOracleMalformed, "payload is not a mapping")
	}
}

// ValidCandidates filters out error-tagged candidates, preserving order.
func ValidCandidates(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsError() {
			out = append(out, c)
		}
	}
	return out
}
