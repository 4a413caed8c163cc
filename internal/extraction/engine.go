package extraction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// Mode selects the reconciliation strategy for a pipeline run.
type Mode string

const (
	// ModeTargeted runs one extraction pass per section chunk and
	// reconciles with deep-merge-by-presence: each chunk supplies the
	// fields its section can answer.
	ModeTargeted Mode = "targeted"

	// ModeConsensus runs N redundant whole-document passes and
	// reconciles with per-field majority vote to cancel out model noise.
	ModeConsensus Mode = "consensus"
)

// Options are the engine tunables. Zero values are not usable; callers
// build Options from the validated application config.
type Options struct {
	Mode           Mode
	Passes         int
	MaxWorkers     int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	SystemPrompt   string
	UserPrompt     string
}

func (o *Options) withDefaults() {
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	if o.UserPrompt == "" {
		o.UserPrompt = DefaultUserPrompt
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = 1
	}
}

// Engine orchestrates multi-pass extraction: fan-out, per-attempt retry,
// reconciliation and schema validation.
type Engine struct {
	oracle oracle.TextOracle
	opts   Options
	schema map[string]any
	fields []string
	logger logging.Logger

	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(context.Context, time.Duration) error
}

func NewEngine(textOracle oracle.TextOracle, opts Options, logger logging.Logger) *Engine {
	opts.withDefaults()
	schema := caselaw.BuildCaseJSONSchema()
	return &Engine{
		oracle: textOracle,
		opts:   opts,
		schema: schema,
		fields: schemaFields(schema),
		logger: logger.Named("extraction"),
		sleep:  sleepCtx,
	}
}

// Extract runs the configured pipeline mode over the chunked document and
// returns the validated Case. docRef is the oracle-side handle of the
// uploaded source document; caseRef, when known from chunking, overrides
// whatever reference the oracle extracted.
func (e *Engine) Extract(ctx context.Context, docRef, caseRef string, chunks []document.Chunk) (*caselaw.Case, error) {
	if len(chunks) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoChunks, "no chunks to extract from")
	}

	var (
		reconciled map[string]any
		err        error
	)
	switch e.opts.Mode {
	case ModeTargeted:
		reconciled, err = e.runTargeted(ctx, docRef, chunks)
	case ModeConsensus:
		reconciled, err = e.runConsensus(ctx, docRef, chunks)
	default:
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, fmt.Sprintf("unknown extraction mode %q", e.opts.Mode))
	}
	if err != nil {
		return nil, err
	}

	return FinalizeCase(reconciled, caseRef, e.logger)
}

// FinalizeCase serializes a reconciled field map and validates it into a
// Case. A non-empty caseRef overrides whatever reference the oracle
// extracted. Schema violations are logged before the error is returned.
func FinalizeCase(reconciled map[string]any, caseRef string, logger logging.Logger) (*caselaw.Case, error) {
	if caseRef != "" {
		reconciled["case_reference"] = caseRef
	}

	raw, err := canonicalize(reconciled)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeReconcileFailed, "serialize reconciled record")
	}
	c, violations, err := caselaw.ParseCase([]byte(raw))
	if err != nil {
		for _, v := range violations {
			logger.Warn("schema violation in reconciled case",
				logging.String("path", v.Path), logging.String("message", v.Message))
		}
		return nil, err
	}
	return c, nil
}

// runTargeted issues one attempt per section chunk and deep-merges the
// results. Chunks are merged in sequence order so earlier sections seed
// the accumulator before later ones.
func (e *Engine) runTargeted(ctx context.Context, docRef string, chunks []document.Chunk) (map[string]any, error) {
	items := make([]WorkItem, 0, len(chunks))
	for _, chunk := range chunks {
		chunk := chunk
		items = append(items, WorkItem{
			Key: fmt.Sprintf("chunk-%04d", chunk.Sequence),
			Execute: func(ctx context.Context) oracle.Result {
				return e.attemptWithRetry(ctx, oracle.GenerateRequest{
					DocumentRef:  docRef,
					Prompt:       buildPrompt(e.opts.UserPrompt, chunk.Section, chunk.Text),
					SystemPrompt: e.opts.SystemPrompt,
					SectionFocus: chunk.Section,
					Schema:       e.schema,
				})
			},
		})
	}

	candidates, err := FanOut(ctx, e.opts.MaxWorkers, items)
	if err != nil {
		return nil, err
	}
	sortCandidates(candidates)
	e.logAttempts(candidates)
	return DeepMergeByPresence(candidates)
}

// runConsensus issues Passes redundant attempts per chunk, each with the
// chunk's section-focused prompt, and majority-votes every schema field
// across the full multiset of attempts. Redundancy cancels out model
// noise; the vote picks the value most attempts agree on.
func (e *Engine) runConsensus(ctx context.Context, docRef string, chunks []document.Chunk) (map[string]any, error) {
	items := make([]WorkItem, 0, len(chunks)*e.opts.Passes)
	for _, chunk := range chunks {
		chunk := chunk
		req := oracle.GenerateRequest{
			DocumentRef:  docRef,
			Prompt:       buildPrompt(e.opts.UserPrompt, chunk.Section, chunk.Text),
			SystemPrompt: e.opts.SystemPrompt,
			SectionFocus: chunk.Section,
			Schema:       e.schema,
		}
		for pass := 0; pass < e.opts.Passes; pass++ {
			items = append(items, WorkItem{
				Key: fmt.Sprintf("chunk-%04d-pass-%02d", chunk.Sequence, pass),
				Execute: func(ctx context.Context) oracle.Result {
					return e.attemptWithRetry(ctx, req)
				},
			})
		}
	}

	candidates, err := FanOut(ctx, e.opts.MaxWorkers, items)
	if err != nil {
		return nil, err
	}
	sortCandidates(candidates)
	e.logAttempts(candidates)
	return MajorityVote(e.fields, candidates)
}

// attemptWithRetry wraps one oracle call with bounded exponential backoff.
// Only transient provider errors and malformed payloads are retried.
func (e *Engine) attemptWithRetry(ctx context.Context, req oracle.GenerateRequest) oracle.Result {
	backoff := e.opts.InitialBackoff
	var last oracle.Result
	for attempt := 1; attempt <= e.opts.MaxRetries; attempt++ {
		last = e.oracle.GenerateStructured(ctx, req)
		if last.Kind == oracle.KindValid || !retryable(last) {
			return last
		}
		if attempt == e.opts.MaxRetries {
			break
		}
		e.logger.Warn("extraction attempt failed, retrying",
			logging.Int("attempt", attempt),
			logging.String("kind", last.Kind.String()),
			logging.Err(last.Err))
		if err := e.sleep(ctx, backoff); err != nil {
			return oracle.ProviderFailure(apperrors.Wrap(err, apperrors.ErrCodeTimeout, "retry wait interrupted"))
		}
		backoff *= 2
		if e.opts.MaxBackoff > 0 && backoff > e.opts.MaxBackoff {
			backoff = e.opts.MaxBackoff
		}
	}
	return last
}

func retryable(res oracle.Result) bool {
	if res.Kind == oracle.KindMalformed {
		return true
	}
	return res.Kind == oracle.KindProviderError && apperrors.IsTransient(res.Err)
}

func (e *Engine) logAttempts(candidates []Candidate) {
	failed := 0
	for _, c := range candidates {
		if c.IsError() {
			failed++
			e.logger.Warn("extraction attempt errored",
				logging.String("key", c.Key), logging.Err(c.Err))
		}
	}
	e.logger.Info("extraction fan-out complete",
		logging.Int("attempts", len(candidates)),
		logging.Int("failed", failed))
}

func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Key < candidates[j].Key })
}

// schemaFields lists the top-level properties of the case schema in a
// stable order, so votes iterate fields deterministically.
func schemaFields(schema map[string]any) []string {
	props, _ := schema["properties"].(map[string]any)
	fields := make([]string, 0, len(props))
	for name := range props {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
