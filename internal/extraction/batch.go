package extraction

import (
	"context"
	"fmt"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// BatchEngine is the batched remote-execution variant of the consensus
// pipeline: all N passes are submitted as one oracle batch job and results
// are re-associated by item key after the job completes. A failed batch
// job is fatal for the extraction round; failed items within a successful
// job degrade to per-item error markers.
type BatchEngine struct {
	runner oracle.BatchRunner
	opts   Options
	schema map[string]any
	fields []string
	logger logging.Logger
}

func NewBatchEngine(runner oracle.BatchRunner, opts Options, logger logging.Logger) *BatchEngine {
	opts.withDefaults()
	schema := caselaw.BuildCaseJSONSchema()
	return &BatchEngine{
		runner: runner,
		opts:   opts,
		schema: schema,
		fields: schemaFields(schema),
		logger: logger.Named("extraction.batch"),
	}
}

// ExtractConsensus submits Passes whole-document attempts as one batch
// job and majority-votes the results.
func (b *BatchEngine) ExtractConsensus(ctx context.Context, docRef string, chunks []document.Chunk) (map[string]any, error) {
	if len(chunks) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoChunks, "no chunks to extract from")
	}

	items := make([]oracle.BatchItem, 0, len(chunks)*b.opts.Passes)
	for _, chunk := range chunks {
		req := oracle.GenerateRequest{
			DocumentRef:  docRef,
			Prompt:       buildPrompt(b.opts.UserPrompt, chunk.Section, chunk.Text),
			SystemPrompt: b.opts.SystemPrompt,
			SectionFocus: chunk.Section,
			Schema:       b.schema,
		}
		for pass := 0; pass < b.opts.Passes; pass++ {
			items = append(items, oracle.BatchItem{
				Key:     fmt.Sprintf("chunk-%04d-pass-%02d", chunk.Sequence, pass),
				Request: req,
			})
		}
	}

	results, err := b.runner.RunBatch(ctx, items)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleBatchFailed, "batch extraction job failed")
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		res, ok := results[item.Key]
		if !ok {
			candidates = append(candidates, Candidate{
				Key: item.Key,
				Err: apperrors.New(apperrors.ErrCodeOracleBatchFailed, "batch job dropped item "+item.Key),
			})
			continue
		}
		candidates = append(candidates, CandidateFromResult(item.Key, res))
	}
	sortCandidates(candidates)

	failed := 0
	for _, c := range candidates {
		if c.IsError() {
			failed++
		}
	}
	b.logger.Info("batch extraction complete",
		logging.Int("items", len(candidates)), logging.Int("failed", failed))

	return MajorityVote(b.fields, candidates)
}
