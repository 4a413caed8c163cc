package prediction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

const conceptualSystemPrompt = `You are an expert in trademark law. You assess the conceptual similarity between trademarks: the meanings, connotations and overall ideas they evoke. When neither mark conveys any concept, the degree is "neutral".`

func conceptualPrompt(applicantMark, opponentMark string) string {
	return fmt.Sprintf(`Analyze the conceptual similarity between the following two trademarks:
1. %q
2. %q

Consider their meanings, connotations, and the overall ideas they evoke.
Provide a similarity score from 0.0 (completely dissimilar) to 1.0 (identical in concept), a qualitative degree, and a brief reasoning.`, applicantMark, opponentMark)
}

func conceptualSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"degree": map[string]any{
				"type": "string",
				"enum": []any{"identical", "high_degree", "medium_degree", "low_degree", "dissimilar", "neutral"},
			},
			"reasoning": map[string]any{"type": "string"},
		},
		"required": []string{"score", "degree", "reasoning"},
	}
}

// Conceptual assesses the conceptual similarity of two marks through the
// oracle.
func (s *Service) Conceptual(ctx context.Context, applicantMark, opponentMark string) (*ConceptualResult, error) {
	s.metrics.SimilarityCallsTotal.WithLabelValues("conceptual").Inc()

	res := s.oracle.GenerateStructured(ctx, oracle.GenerateRequest{
		Prompt:       conceptualPrompt(applicantMark, opponentMark),
		SystemPrompt: conceptualSystemPrompt,
		Schema:       conceptualSchema(),
	})
	if res.Kind != oracle.KindValid {
		return nil, apperrors.Wrap(res.Err, apperrors.ErrCodeSimilarityFailed, "conceptual similarity call failed")
	}

	var result ConceptualResult
	if err := json.Unmarshal(res.Payload, &result); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleMalformed, "decode conceptual similarity response")
	}
	if !result.Degree.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrCodeOracleMalformed, "unknown conceptual degree %q", result.Degree)
	}
	return &result, nil
}
