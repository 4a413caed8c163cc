package prediction

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

func reasoningSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reasoning": map[string]any{"type": "string"},
		},
		"required": []string{"reasoning"},
	}
}

func markReasoningPrompt(applicantMark, opponentMark string, m *MarkSimilarity, conceptualReasoning string) string {
	return fmt.Sprintf(`Based on the following analysis, provide a concise, final reasoning for the overall similarity assessment between %q and %q:

- Visual Similarity: %s (Score: %.2f)
- Aural Similarity: %s (Score: %.2f)
- Conceptual Similarity: %s (Score: %.2f)
  - Reasoning: %s

The weighted overall similarity score is %.2f, which is considered '%s'.`,
		applicantMark, opponentMark,
		m.Visual, m.VisualScore,
		m.Aural, m.AuralScore,
		m.Conceptual, m.ConceptualScore, conceptualReasoning,
		m.OverallScore, m.Overall)
}

// Marks assesses two marks on the visual, aural and conceptual dimensions
// concurrently, blends them into a weighted overall score and asks the
// oracle for a final reasoned summary.
func (s *Service) Marks(ctx context.Context, applicantMark, opponentMark string) (*MarkSimilarity, error) {
	s.metrics.SimilarityCallsTotal.WithLabelValues("marks").Inc()

	var (
		result     MarkSimilarity
		conceptual *ConceptualResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.VisualScore, result.Visual = VisualSimilarity(applicantMark, opponentMark)
		return nil
	})
	g.Go(func() error {
		result.AuralScore, result.Aural = AuralSimilarity(applicantMark, opponentMark)
		return nil
	})
	g.Go(func() error {
		var err error
		conceptual, err = s.Conceptual(gctx, applicantMark, opponentMark)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Conceptual = conceptual.Degree
	result.ConceptualScore = conceptual.Score
	result.OverallScore = caselaw.OverallScore(result.VisualScore, result.AuralScore, result.ConceptualScore)
	result.Overall = caselaw.OverallThresholds.DegreeForScore(result.OverallScore)

	res := s.oracle.GenerateStructured(ctx, oracle.GenerateRequest{
		Prompt: markReasoningPrompt(applicantMark, opponentMark, &result, conceptual.Reasoning),
		Schema: reasoningSchema(),
	})
	if res.Kind != oracle.KindValid {
		return nil, apperrors.Wrap(res.Err, apperrors.ErrCodeSimilarityFailed, "mark similarity reasoning call failed")
	}
	var reasoned struct {
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal(res.Payload, &reasoned); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleMalformed, "decode mark similarity reasoning")
	}
	result.Reasoning = reasoned.Reasoning

	return &result, nil
}
