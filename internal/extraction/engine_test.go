package extraction

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// scriptedOracle answers each call through a behavior function, tracking
// per-section call counts so tests can fail the Nth attempt of a section.
type scriptedOracle struct {
	mu       sync.Mutex
	calls    map[string]int
	behavior func(req oracle.GenerateRequest, nthCall int) oracle.Result
}

func newScriptedOracle(behavior func(req oracle.GenerateRequest, nthCall int) oracle.Result) *scriptedOracle {
	return &scriptedOracle{calls: map[string]int{}, behavior: behavior}
}

func (s *scriptedOracle) GenerateStructured(_ context.Context, req oracle.GenerateRequest) oracle.Result {
	s.mu.Lock()
	n := s.calls[req.SectionFocus]
	s.calls[req.SectionFocus] = n + 1
	s.mu.Unlock()
	return s.behavior(req, n)
}

func fullCaseMap() map[string]any {
	return map[string]any{
		"case_reference":     "O/0959/23",
		"decision_date":      "14/10/2023",
		"decision_maker":     "A. Hearing Officer",
		"jurisdiction":       "UKIPO",
		"application_number": "UK00003756789",
		"applicant_name":     "Acme Brands Ltd",
		"opponent_name":      "Global Holdings BV",
		"applicant_marks": []any{map[string]any{
			"mark":      "LUMINEX",
			"mark_type": "WORD",
			"goods_services": []any{map[string]any{
				"class": 9,
				"terms": []any{"computer software"},
			}},
		}},
		"opponent_marks": []any{map[string]any{
			"mark":                "LUMINA",
			"mark_type":           "WORD",
			"registration_number": "UK00002567890",
			"filing_date":         "01/03/2015",
			"registration_date":   "12/06/2015",
			"priority_date":       nil,
			"goods_services": []any{map[string]any{
				"class": 9,
				"terms": []any{"software"},
			}},
		}},
		"grounds_for_opposition": []any{"5(2)(b)"},
		"proof_of_use_requested": false,
		"goods_services_comparison": []any{map[string]any{
			"applicant_term": "computer software",
			"opponent_term":  "software",
			"similarity":     "identical",
		}},
		"mark_comparison": map[string]any{
			"visual_similarity":     "high_degree",
			"aural_similarity":      "high_degree",
			"conceptual_similarity": "neutral",
		},
		"distinctive_character":      "medium_degree",
		"average_consumer_attention": "medium",
		"likelihood_of_confusion":    true,
		"confusion_type":             "direct",
		"opposition_outcome":         "successful",
	}
}

func payload(t *testing.T, m map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return raw
}

func sectionChunks() []document.Chunk {
	return []document.Chunk{
		{Sequence: 0, Section: "Background & pleadings", Text: "background text", Type: document.ChunkTypeSection},
		{Sequence: 1, Section: "Comparison of marks", Text: "comparison text", Type: document.ChunkTypeSection},
		{Sequence: 2, Section: "Decision", Text: "decision text", Type: document.ChunkTypeSection},
	}
}

func testOptions(mode Mode) Options {
	return Options{
		Mode:           mode,
		Passes:         5,
		MaxWorkers:     4,
		MaxRetries:     3,
		InitialBackoff: 4 * time.Second,
		MaxBackoff:     10 * time.Second,
	}
}

func newTestEngine(o oracle.TextOracle, opts Options) *Engine {
	e := NewEngine(o, opts, logging.NewNopLogger())
	e.sleep = func(context.Context, time.Duration) error { return nil }
	return e
}

func TestEngine_ConsensusSurvivesOneErrorPerSection(t *testing.T) {
	full := fullCaseMap()
	fake := newScriptedOracle(func(req oracle.GenerateRequest, nth int) oracle.Result {
		if nth == 0 {
			// first attempt of every section fails outright
			return oracle.ProviderFailure(apperrors.New(apperrors.ErrCodeOracleRejected, "content rejected"))
		}
		return oracle.Valid(payload(t, full))
	})

	e := newTestEngine(fake, testOptions(ModeConsensus))
	c, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", sectionChunks())
	require.NoError(t, err)
	assert.Equal(t, "O/0959/23", c.Reference())
	assert.Equal(t, "Acme Brands Ltd", c.ApplicantName)
	assert.True(t, c.LikelihoodOfConfusion)
}

func TestEngine_ConsensusMajorityCancelsNoise(t *testing.T) {
	fake := newScriptedOracle(func(req oracle.GenerateRequest, nth int) oracle.Result {
		m := fullCaseMap()
		if nth == 0 {
			// a noisy minority attempt disagrees on the outcome
			m["opposition_outcome"] = "unsuccessful"
		}
		return oracle.Valid(payload(t, m))
	})

	e := newTestEngine(fake, testOptions(ModeConsensus))
	c, err := e.Extract(context.Background(), "files/doc-1", "", sectionChunks())
	require.NoError(t, err)
	require.NotNil(t, c.OppositionOutcome)
	assert.Equal(t, "successful", string(*c.OppositionOutcome))
}

func TestEngine_TargetedMergesDisjointSections(t *testing.T) {
	background := map[string]any{
		"case_reference":     "O/0959/23",
		"decision_date":      "14/10/2023",
		"decision_maker":     "A. Hearing Officer",
		"jurisdiction":       "UKIPO",
		"application_number": "UK00003756789",
		"applicant_name":     "Acme Brands Ltd",
		"opponent_name":      "Global Holdings BV",
		"applicant_marks":    fullCaseMap()["applicant_marks"],
		"opponent_marks":     fullCaseMap()["opponent_marks"],
	}
	comparison := map[string]any{
		"grounds_for_opposition":    []any{"5(2)(b)"},
		"proof_of_use_requested":    false,
		"goods_services_comparison": fullCaseMap()["goods_services_comparison"],
		"mark_comparison":           fullCaseMap()["mark_comparison"],
	}
	decision := map[string]any{
		"distinctive_character":      "medium_degree",
		"average_consumer_attention": "medium",
		"likelihood_of_confusion":    true,
		"confusion_type":             "direct",
		"opposition_outcome":         "successful",
	}

	fake := newScriptedOracle(func(req oracle.GenerateRequest, _ int) oracle.Result {
		switch req.SectionFocus {
		case "Background & pleadings":
			return oracle.Valid(payload(t, background))
		case "Comparison of marks":
			return oracle.Valid(payload(t, comparison))
		default:
			return oracle.Valid(payload(t, decision))
		}
	})

	e := newTestEngine(fake, testOptions(ModeTargeted))
	c, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", sectionChunks())
	require.NoError(t, err)
	assert.Equal(t, "Acme Brands Ltd", c.ApplicantName)
	assert.Equal(t, "high_degree", string(c.MarkComparison.VisualSimilarity))
	require.NotNil(t, c.OppositionOutcome)
	assert.Equal(t, "successful", string(*c.OppositionOutcome))
}

func TestEngine_TransientErrorsRetriedWithBackoff(t *testing.T) {
	full := fullCaseMap()
	attempts := 0
	var mu sync.Mutex
	fake := newScriptedOracle(func(req oracle.GenerateRequest, _ int) oracle.Result {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts <= 2 {
			return oracle.ProviderFailure(apperrors.New(apperrors.ErrCodeOracleTransient, "rate limited"))
		}
		return oracle.Valid(payload(t, full))
	})

	opts := testOptions(ModeConsensus)
	opts.Passes = 1
	e := NewEngine(fake, opts, logging.NewNopLogger())

	var delays []time.Duration
	e.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	chunks := sectionChunks()[:1]
	_, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", chunks)
	require.NoError(t, err)
	require.Len(t, delays, 2)
	assert.Equal(t, 4*time.Second, delays[0])
	assert.Equal(t, 8*time.Second, delays[1])
}

func TestEngine_BackoffCapped(t *testing.T) {
	fake := newScriptedOracle(func(oracle.GenerateRequest, int) oracle.Result {
		return oracle.ProviderFailure(apperrors.New(apperrors.ErrCodeOracleTransient, "still rate limited"))
	})

	opts := testOptions(ModeConsensus)
	opts.Passes = 1
	opts.MaxRetries = 4
	e := NewEngine(fake, opts, logging.NewNopLogger())

	var delays []time.Duration
	e.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", sectionChunks()[:1])
	require.Error(t, err)
	require.Len(t, delays, 3)
	assert.Equal(t, []time.Duration{4 * time.Second, 8 * time.Second, 10 * time.Second}, delays)
}

func TestEngine_NonTransientNotRetried(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	fake := newScriptedOracle(func(oracle.GenerateRequest, int) oracle.Result {
		mu.Lock()
		calls++
		mu.Unlock()
		return oracle.ProviderFailure(apperrors.New(apperrors.ErrCodeOracleRejected, "safety rejection"))
	})

	opts := testOptions(ModeConsensus)
	opts.Passes = 1
	e := newTestEngine(fake, opts)

	_, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", sectionChunks()[:1])
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestEngine_MalformedPayloadRetried(t *testing.T) {
	full := fullCaseMap()
	calls := 0
	var mu sync.Mutex
	fake := newScriptedOracle(func(oracle.GenerateRequest, int) oracle.Result {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return oracle.Malformed(apperrors.New(apperrors.ErrCodeOracleMalformed, "truncated json"))
		}
		return oracle.Valid(payload(t, full))
	})

	opts := testOptions(ModeConsensus)
	opts.Passes = 1
	e := newTestEngine(fake, opts)

	_, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", sectionChunks()[:1])
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestEngine_ValidationFailureNotRetried(t *testing.T) {
	incomplete := map[string]any{"applicant_name": "Acme Brands Ltd"}
	calls := 0
	var mu sync.Mutex
	fake := newScriptedOracle(func(oracle.GenerateRequest, int) oracle.Result {
		mu.Lock()
		calls++
		mu.Unlock()
		return oracle.Valid(payload(t, incomplete))
	})

	opts := testOptions(ModeConsensus)
	opts.Passes = 1
	e := newTestEngine(fake, opts)

	_, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", sectionChunks()[:1])
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCaseValidation))
	assert.Equal(t, 1, calls)
}

func TestEngine_NoChunks(t *testing.T) {
	e := newTestEngine(newScriptedOracle(nil), testOptions(ModeConsensus))
	_, err := e.Extract(context.Background(), "files/doc-1", "O/1/23", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoChunks))
}

func TestEngine_ChunkerReferenceOverridesExtracted(t *testing.T) {
	full := fullCaseMap()
	full["case_reference"] = "O/9999/99"
	fake := newScriptedOracle(func(oracle.GenerateRequest, int) oracle.Result {
		return oracle.Valid(payload(t, full))
	})

	opts := testOptions(ModeConsensus)
	opts.Passes = 1
	e := newTestEngine(fake, opts)

	c, err := e.Extract(context.Background(), "files/doc-1", "O/0959/23", sectionChunks()[:1])
	require.NoError(t, err)
	assert.Equal(t, "O/0959/23", c.Reference())
}
