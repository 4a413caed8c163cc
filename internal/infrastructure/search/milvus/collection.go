package milvus

import (
	"context"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

const (
	fieldChunkID   = "chunk_id"
	fieldCaseRef   = "case_reference"
	fieldEmbedding = "embedding"

	maxIDLength = "64"
	maxRefLength = "64"

	hnswM              = 16
	hnswEfConstruction = 200
	hnswSearchEf       = 64
)

// EnsureChunkCollection creates and loads the chunk-embedding collection if
// it does not exist. Idempotent: an existing collection is loaded as-is.
func (c *Client) EnsureChunkCollection(ctx context.Context, dims int) error {
	mc := c.raw()
	name := c.cfg.Collection

	has, err := mc.HasCollection(ctx, name)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "check collection existence")
	}
	if !has {
		schema := &entity.Schema{
			CollectionName: name,
			Description:    "case decision text chunks and their embeddings",
			Fields: []*entity.Field{
				{
					Name:       fieldChunkID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{entity.TypeParamMaxLength: maxIDLength},
				},
				{
					Name:       fieldCaseRef,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{entity.TypeParamMaxLength: maxRefLength},
				},
				{
					Name:       fieldEmbedding,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{entity.TypeParamDim: strconv.Itoa(dims)},
				},
			},
		}
		if err := mc.CreateCollection(ctx, schema, 2); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "create chunk collection")
		}

		index, err := entity.NewIndexHNSW(entity.IP, hnswM, hnswEfConstruction)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "build hnsw index spec")
		}
		if err := mc.CreateIndex(ctx, name, fieldEmbedding, index, false); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "create embedding index")
		}
		c.logger.Info("chunk collection created",
			logging.String("collection", name), logging.Int("dims", dims))
	}

	if err := mc.LoadCollection(ctx, name, false); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "load chunk collection")
	}
	return nil
}
