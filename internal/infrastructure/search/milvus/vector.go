package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// ChunkVector is one embedding row keyed by chunk identifier.
type ChunkVector struct {
	ChunkID       string
	CaseReference string
	Embedding     []float32
}

// Match is one nearest-neighbour hit. Score is inner-product similarity:
// higher means closer.
type Match struct {
	ChunkID       string
	CaseReference string
	Score         float32
}

// UpsertChunkVectors writes a batch of chunk embeddings. Existing chunk
// IDs are overwritten, so re-ingesting a case replaces its vectors.
func (c *Client) UpsertChunkVectors(ctx context.Context, dims int, vectors []ChunkVector) error {
	if len(vectors) == 0 {
		return nil
	}
	ids := make([]string, len(vectors))
	refs := make([]string, len(vectors))
	embeddings := make([][]float32, len(vectors))
	for i, v := range vectors {
		ids[i] = v.ChunkID
		refs[i] = v.CaseReference
		embeddings[i] = v.Embedding
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	_, err := c.raw().Upsert(ctx, c.cfg.Collection, "",
		entity.NewColumnVarChar(fieldChunkID, ids),
		entity.NewColumnVarChar(fieldCaseRef, refs),
		entity.NewColumnFloatVector(fieldEmbedding, dims, embeddings),
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeVectorUpsertFailed, "upsert chunk vectors")
	}
	c.logger.Debug("chunk vectors upserted", logging.Int("count", len(vectors)))
	return nil
}

// SearchSimilar returns the k nearest chunks to the query vector.
func (c *Client) SearchSimilar(ctx context.Context, query []float32, k int) ([]Match, error) {
	sp, err := entity.NewIndexHNSWSearchParam(hnswSearchEf)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeVectorQueryFailed, "build search params")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	results, err := c.raw().Search(ctx, c.cfg.Collection, nil, "",
		[]string{fieldChunkID, fieldCaseRef},
		[]entity.Vector{entity.FloatVector(query)},
		fieldEmbedding, entity.IP, k, sp)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeVectorQueryFailed, "vector search")
	}

	var matches []Match
	for _, result := range results {
		idCol, ok := result.IDs.(*entity.ColumnVarChar)
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeVectorQueryFailed, "unexpected id column type")
		}
		refCol, _ := result.Fields.GetColumn(fieldCaseRef).(*entity.ColumnVarChar)
		for i := 0; i < result.ResultCount; i++ {
			id, err := idCol.ValueByIdx(i)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeVectorQueryFailed, "read match id")
			}
			m := Match{ChunkID: id, Score: result.Scores[i]}
			if refCol != nil {
				if ref, err := refCol.ValueByIdx(i); err == nil {
					m.CaseReference = ref
				}
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}
