package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// exampleMaxChars caps how much of each retrieved chunk goes into the
// few-shot prompt.
const exampleMaxChars = 400

const gsSystemPrompt = `You are an expert in trademark law, specializing in assessing the similarity between goods and services (G&S). You analyze new G&S pairs using real-world examples from past opposition decisions as context.`

func gsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"similarity": map[string]any{
				"type": "string",
				"enum": []any{"identical", "high_degree", "medium_degree", "low_degree", "dissimilar"},
			},
			"similarity_score":        map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"is_competitive":          map[string]any{"type": "boolean"},
			"is_complementary":        map[string]any{"type": "boolean"},
			"likelihood_of_confusion": map[string]any{"type": "boolean"},
			"confusion_type": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string", "enum": []any{"direct", "indirect", "both"}},
					map[string]any{"type": "null"},
				},
			},
			"reasoning": map[string]any{"type": "string"},
		},
		"required": []string{"similarity", "similarity_score", "is_competitive", "is_complementary", "likelihood_of_confusion", "confusion_type", "reasoning"},
	}
}

func gsPrompt(applicant, opponent GsTerm, examples string) string {
	return fmt.Sprintf(`Here are some relevant passages from past goods/services comparisons in our decision database:
%s

Now, analyze the following new case with the above examples as context:

- Applicant's Term: %q (Class %d)
- Opponent's Term: %q (Class %d)

Based on all of this information, provide a detailed assessment.`,
		examples,
		applicant.Term, applicant.Class,
		opponent.Term, opponent.Class)
}

// GoodsServices assesses one applicant/opponent term pair with retrieval
// augmentation: both terms are embedded, the nearest stored chunks are
// fetched and fed into the oracle prompt as few-shot context. Retrieval
// failure degrades to an unaugmented assessment.
func (s *Service) GoodsServices(ctx context.Context, applicant, opponent GsTerm) (*GsSimilarity, error) {
	if strings.TrimSpace(applicant.Term) == "" || strings.TrimSpace(opponent.Term) == "" {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "both goods/services terms are required")
	}
	s.metrics.SimilarityCallsTotal.WithLabelValues("goods_services").Inc()

	examples := s.retrieveExamples(ctx, applicant.Term, opponent.Term)
	if examples == "" {
		examples = "No relevant examples found in the database."
	}

	res := s.oracle.GenerateStructured(ctx, oracle.GenerateRequest{
		Prompt:       gsPrompt(applicant, opponent, examples),
		SystemPrompt: gsSystemPrompt,
		Schema:       gsSchema(),
	})
	if res.Kind != oracle.KindValid {
		return nil, apperrors.Wrap(res.Err, apperrors.ErrCodeSimilarityFailed, "goods/services similarity call failed")
	}

	var result GsSimilarity
	if err := json.Unmarshal(res.Payload, &result); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleMalformed, "decode goods/services response")
	}
	if !result.Similarity.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrCodeOracleMalformed, "unknown similarity degree %q", result.Similarity)
	}
	result.ApplicantTerm = applicant.Term
	result.OpponentTerm = opponent.Term
	return &result, nil
}

// retrieveExamples embeds both terms, queries the vector index for each
// and formats the deduplicated chunk texts. Any failure returns an empty
// string: retrieval context is an enrichment, never a prerequisite.
func (s *Service) retrieveExamples(ctx context.Context, applicantTerm, opponentTerm string) string {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{applicantTerm, opponentTerm})
	if err != nil || len(vectors) != 2 {
		s.logger.Warn("embed goods/services terms failed", logging.Err(err))
		return ""
	}

	seen := make(map[string]bool)
	var ids []string
	for _, vec := range vectors {
		matches, err := s.search.SearchSimilar(ctx, vec, s.opts.Neighbors)
		if err != nil {
			s.metrics.VectorSearchesTotal.WithLabelValues("error").Inc()
			s.logger.Warn("vector search failed", logging.Err(err))
			continue
		}
		s.metrics.VectorSearchesTotal.WithLabelValues("ok").Inc()
		for _, match := range matches {
			if !seen[match.ChunkID] {
				seen[match.ChunkID] = true
				ids = append(ids, match.ChunkID)
			}
		}
	}
	if len(ids) == 0 {
		return ""
	}

	chunks, err := s.chunks.GetChunksByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("load retrieved chunks failed", logging.Err(err))
		return ""
	}

	var b strings.Builder
	for _, chunk := range chunks {
		text := chunk.Text
		if len(text) > exampleMaxChars {
			text = text[:exampleMaxChars] + "..."
		}
		fmt.Fprintf(&b, "- [case %s] %s\n", chunk.CaseReference, text)
	}
	return strings.TrimRight(b.String(), "\n")
}
