package ingestion

import (
	"context"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/extraction"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
)

// BatchExtractor adapts the remote batch consensus engine to the
// CaseExtractor surface: one batch job per document, then the same
// finalize step the in-process engine uses.
type BatchExtractor struct {
	engine *extraction.BatchEngine
	logger logging.Logger
}

func NewBatchExtractor(engine *extraction.BatchEngine, logger logging.Logger) *BatchExtractor {
	return &BatchExtractor{engine: engine, logger: logger.Named("extraction.batch")}
}

func (b *BatchExtractor) Extract(ctx context.Context, docRef, caseRef string, chunks []document.Chunk) (*caselaw.Case, error) {
	reconciled, err := b.engine.ExtractConsensus(ctx, docRef, chunks)
	if err != nil {
		return nil, err
	}
	return extraction.FinalizeCase(reconciled, caseRef, b.logger)
}
