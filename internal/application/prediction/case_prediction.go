package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

const predictionSystemPrompt = `You are a trademark law expert. You predict the final outcome of opposition cases from detailed similarity analysis.`

func predictionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"predicted_outcome": map[string]any{
				"type": "string",
				"enum": []any{"successful", "partially_successful", "unsuccessful"},
			},
			"confidence_score":   map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"detailed_reasoning": map[string]any{"type": "string"},
		},
		"required": []string{"predicted_outcome", "confidence_score", "detailed_reasoning"},
	}
}

func synthesisPrompt(markSim *MarkSimilarity, assessments []GsSimilarity) string {
	var gs strings.Builder
	for _, a := range assessments {
		fmt.Fprintf(&gs, "- G/S Pair: %q vs %q -> Similarity: %s (Score: %.2f), Likelihood of Confusion: %t, Reasoning: %s\n",
			a.ApplicantTerm, a.OpponentTerm, a.Similarity, a.SimilarityScore, a.LikelihoodOfConfusion, a.Reasoning)
	}

	return fmt.Sprintf(`Based on the following detailed analysis, predict the final outcome of this opposition case.

**Mark Similarity Assessment:**
- Overall: %s (Score: %.2f)
- Reasoning: %s

**Goods & Services Similarity Assessments:**
%s
Synthesize all this information to provide a final prediction.`,
		markSim.Overall, markSim.OverallScore, markSim.Reasoning, gs.String())
}

// gsPair is one applicant/opponent term combination awaiting assessment.
type gsPair struct {
	applicant GsTerm
	opponent  GsTerm
}

func termPairs(applicant caselaw.ApplicantMark, opponent caselaw.OpponentMark) []gsPair {
	var applicantTerms, opponentTerms []GsTerm
	for _, gs := range applicant.GoodsServices {
		for _, term := range gs.Terms {
			applicantTerms = append(applicantTerms, GsTerm{Term: term, Class: gs.Class})
		}
	}
	for _, gs := range opponent.GoodsServices {
		for _, term := range gs.Terms {
			opponentTerms = append(opponentTerms, GsTerm{Term: term, Class: gs.Class})
		}
	}

	pairs := make([]gsPair, 0, len(applicantTerms)*len(opponentTerms))
	for _, a := range applicantTerms {
		for _, o := range opponentTerms {
			pairs = append(pairs, gsPair{applicant: a, opponent: o})
		}
	}
	return pairs
}

// PredictCase predicts the outcome of an opposition: mark similarity for
// the lead marks, a bounded concurrent G&S assessment for every term
// pair, then an oracle synthesis of the combined evidence. Additional
// marks beyond the first of each side are not compared.
func (s *Service) PredictCase(ctx context.Context, input CaseInput) (*CasePrediction, error) {
	start := time.Now()
	prediction, err := s.predictCase(ctx, input)
	if err != nil {
		s.metrics.PredictionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.PredictionsTotal.WithLabelValues("ok").Inc()
	s.metrics.PredictionDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	return prediction, nil
}

func (s *Service) predictCase(ctx context.Context, input CaseInput) (*CasePrediction, error) {
	if len(input.ApplicantMarks) == 0 || len(input.OpponentMarks) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "at least one applicant and one opponent mark are required")
	}
	applicant := input.ApplicantMarks[0]
	opponent := input.OpponentMarks[0]
	if applicant.Mark == "" || opponent.Mark == "" {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "mark text must not be empty")
	}

	markSim, err := s.Marks(ctx, applicant.Mark, opponent.Mark)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodePredictionFailed, "mark similarity assessment failed")
	}

	pairs := termPairs(applicant, opponent)
	assessments := make([]GsSimilarity, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrent)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			assessment, err := s.GoodsServices(gctx, pair.applicant, pair.opponent)
			if err != nil {
				return err
			}
			assessments[i] = *assessment
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodePredictionFailed, "goods/services assessment failed")
	}

	res := s.oracle.GenerateStructured(ctx, oracle.GenerateRequest{
		Prompt:       synthesisPrompt(markSim, assessments),
		SystemPrompt: predictionSystemPrompt,
		Schema:       predictionSchema(),
	})
	if res.Kind != oracle.KindValid {
		return nil, apperrors.Wrap(res.Err, apperrors.ErrCodePredictionFailed, "outcome synthesis call failed")
	}

	var prediction CasePrediction
	if err := json.Unmarshal(res.Payload, &prediction); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleMalformed, "decode prediction response")
	}
	if !prediction.PredictedOutcome.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrCodeOracleMalformed, "unknown predicted outcome %q", prediction.PredictedOutcome)
	}
	prediction.MarkSimilarity = *markSim
	prediction.GoodsServices = assessments

	s.logger.Info("case outcome predicted",
		logging.String("outcome", string(prediction.PredictedOutcome)),
		logging.Float64("confidence", prediction.ConfidenceScore),
		logging.Int("gs_pairs", len(assessments)))
	return &prediction, nil
}
