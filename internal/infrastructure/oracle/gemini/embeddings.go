package gemini

import (
	"context"

	"github.com/google/generative-ai-go/genai"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// EmbedTexts vectorises texts through the batch embedding endpoint,
// splitting the input to stay under the provider's per-request cap.
// The returned slice is index-aligned with the input.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	model := c.client.EmbeddingModel(c.cfg.EmbeddingModel)

	limit := c.cfg.EmbedBatchLimit
	if limit <= 0 {
		limit = 100
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += limit {
		end := start + limit
		if end > len(texts) {
			end = len(texts)
		}

		batch := model.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}
		resp, err := model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeEmbeddingFailed, "batch embed contents")
		}
		if len(resp.Embeddings) != end-start {
			return nil, apperrors.Newf(apperrors.ErrCodeEmbeddingFailed,
				"embedding count mismatch: sent %d, got %d", end-start, len(resp.Embeddings))
		}
		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}
	return vectors, nil
}

// Dimensions reports the configured embedding width, which must match the
// vector collection schema.
func (c *Client) Dimensions() int {
	return c.cfg.EmbeddingDims
}
