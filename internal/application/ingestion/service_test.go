package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

type fakeFetcher struct {
	objects map[string][]byte
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	f.calls++
	data, ok := f.objects[key]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeDocumentNotFound, "document not found")
	}
	return data, nil
}

type fakePages struct {
	pages []document.PageText
}

func (f *fakePages) Extract([]byte) ([]document.PageText, error) {
	return f.pages, nil
}

type fakeChunker struct {
	chunks []document.Chunk
	err    error
}

func (f *fakeChunker) Chunk(context.Context, string, []document.PageText) ([]document.Chunk, error) {
	return f.chunks, f.err
}

type fakeOracleDocs struct {
	uploads int
	deletes int
}

func (f *fakeOracleDocs) Upload(context.Context, string, []byte, string) (oracle.DocumentHandle, error) {
	f.uploads++
	return oracle.DocumentHandle{Ref: "files/abc", Name: "abc"}, nil
}

func (f *fakeOracleDocs) Delete(context.Context, oracle.DocumentHandle) error {
	f.deletes++
	return nil
}

type fakeExtractor struct {
	result *caselaw.Case
	err    error
	docRef string
}

func (f *fakeExtractor) Extract(_ context.Context, docRef, _ string, _ []document.Chunk) (*caselaw.Case, error) {
	f.docRef = docRef
	return f.result, f.err
}

type statusChange struct {
	ref    string
	status caselaw.IngestStatus
	note   string
}

type fakeCaseStore struct {
	saved    []*postgres.CaseRecord
	statuses []statusChange
	saveErr  error
}

func (f *fakeCaseStore) SaveCase(_ context.Context, rec *postgres.CaseRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeCaseStore) UpdateIngestStatus(_ context.Context, ref string, status caselaw.IngestStatus, note string) error {
	f.statuses = append(f.statuses, statusChange{ref: ref, status: status, note: note})
	return nil
}

type fakeEmbedder struct {
	dims int
	err  error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

type fakeVectors struct {
	upserted []milvus.ChunkVector
	dims     int
	err      error
}

func (f *fakeVectors) UpsertChunkVectors(_ context.Context, dims int, vectors []milvus.ChunkVector) error {
	if f.err != nil {
		return f.err
	}
	f.dims = dims
	f.upserted = append(f.upserted, vectors...)
	return nil
}

type fakeEvents struct {
	events []kafka.CaseEvent
}

func (f *fakeEvents) PublishCaseEvent(_ context.Context, event kafka.CaseEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeLock struct {
	err      error
	acquired int
	released int
}

func (f *fakeLock) Acquire(context.Context, string) (func(context.Context), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired++
	return func(context.Context) { f.released++ }, nil
}

type fixture struct {
	svc       *Service
	fetcher   *fakeFetcher
	chunker   *fakeChunker
	docs      *fakeOracleDocs
	extractor *fakeExtractor
	store     *fakeCaseStore
	embedder  *fakeEmbedder
	vectors   *fakeVectors
	events    *fakeEvents
	lock      *fakeLock
}

func newFixture() *fixture {
	f := &fixture{
		fetcher: &fakeFetcher{objects: map[string][]byte{
			"cases/O-0959-23.pdf": []byte("%PDF-1.7 fake"),
		}},
		chunker: &fakeChunker{chunks: []document.Chunk{
			{Text: "Background of the opposition", CaseReference: "O-0959-23", Section: "Background", Sequence: 0, Type: document.ChunkTypeSection},
			{Text: "Decision and costs", CaseReference: "O-0959-23", Section: "Decision", Sequence: 1, Type: document.ChunkTypeSection},
		}},
		docs:      &fakeOracleDocs{},
		extractor: &fakeExtractor{result: &caselaw.Case{CaseReference: strPtr("O/0959/23")}},
		store:     &fakeCaseStore{},
		embedder:  &fakeEmbedder{dims: 4},
		vectors:   &fakeVectors{},
		events:    &fakeEvents{},
		lock:      &fakeLock{},
	}
	f.svc = NewService(Deps{
		Documents:     f.fetcher,
		Pages:         &fakePages{pages: []document.PageText{{Number: 1, Text: "TRADE MARKS ACT 1994"}}},
		Chunker:       f.chunker,
		OracleDocs:    f.docs,
		Extractor:     f.extractor,
		Cases:         f.store,
		Embedder:      f.embedder,
		Vectors:       f.vectors,
		Events:        f.events,
		Lock:          f.lock,
		Logger:        logging.NewNopLogger(),
		ChunkStrategy: "headings",
	})
	return f
}

func strPtr(s string) *string { return &s }

func ingestRequest() kafka.IngestRequest {
	return kafka.IngestRequest{DocumentKey: "cases/O-0959-23.pdf"}
}

func TestIngestHappyPath(t *testing.T) {
	f := newFixture()

	err := f.svc.Ingest(context.Background(), ingestRequest())
	require.NoError(t, err)

	require.Len(t, f.store.saved, 1)
	rec := f.store.saved[0]
	assert.Equal(t, "O/0959/23", rec.Reference)
	assert.Equal(t, caselaw.IngestSucceeded, rec.Status)
	assert.Equal(t, "cases/O-0959-23.pdf", rec.SourceKey)
	require.Len(t, rec.Chunks, 2)
	assert.Equal(t, "O-0959-23-chunk-0000", rec.Chunks[0].ID)
	assert.Equal(t, "O-0959-23-chunk-0001", rec.Chunks[1].ID)

	assert.Equal(t, "files/abc", f.extractor.docRef)
	assert.Equal(t, 1, f.docs.uploads)
	assert.Equal(t, 1, f.docs.deletes)

	require.Len(t, f.vectors.upserted, 2)
	assert.Equal(t, 4, f.vectors.dims)
	assert.Equal(t, "O-0959-23-chunk-0000", f.vectors.upserted[0].ChunkID)
	assert.Equal(t, "O-0959-23", f.vectors.upserted[0].CaseReference)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, kafka.EventCaseIngested, f.events.events[0].Type)
	assert.Equal(t, "O/0959/23", f.events.events[0].CaseReference)

	assert.Equal(t, 1, f.lock.acquired)
	assert.Equal(t, 1, f.lock.released)

	// processing status was recorded before extraction started
	require.NotEmpty(t, f.store.statuses)
	assert.Equal(t, caselaw.IngestProcessing, f.store.statuses[0].status)
	assert.Equal(t, "O/0959/23", f.store.statuses[0].ref)
}

func TestIngestEmbeddingFailureStoresPartial(t *testing.T) {
	f := newFixture()
	f.embedder.err = apperrors.New(apperrors.ErrCodeEmbeddingFailed, "embedding backend down")

	err := f.svc.Ingest(context.Background(), ingestRequest())
	require.NoError(t, err)

	require.Len(t, f.store.saved, 1)
	last := f.store.statuses[len(f.store.statuses)-1]
	assert.Equal(t, caselaw.IngestPartialEmbeddings, last.status)
	assert.Contains(t, last.note, "embedding failed")

	require.Len(t, f.events.events, 1)
	assert.Equal(t, kafka.EventCasePartial, f.events.events[0].Type)
	assert.Empty(t, f.vectors.upserted)
}

func TestIngestPermanentFailureRecordsStatus(t *testing.T) {
	f := newFixture()
	f.extractor.result = nil
	f.extractor.err = apperrors.New(apperrors.ErrCodeOracleRejected, "prompt rejected")

	err := f.svc.Ingest(context.Background(), ingestRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeOracleRejected, apperrors.GetCode(err))

	last := f.store.statuses[len(f.store.statuses)-1]
	assert.Equal(t, caselaw.IngestFailed, last.status)
	assert.Equal(t, "O/0959/23", last.ref)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, kafka.EventCaseFailed, f.events.events[0].Type)
	assert.Empty(t, f.store.saved)
	assert.Equal(t, 1, f.docs.deletes)
}

func TestIngestTransientFailureLeavesStatusForRedelivery(t *testing.T) {
	f := newFixture()
	f.extractor.result = nil
	f.extractor.err = apperrors.New(apperrors.ErrCodeOracleTransient, "rate limited")

	err := f.svc.Ingest(context.Background(), ingestRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))

	for _, change := range f.store.statuses {
		assert.NotEqual(t, caselaw.IngestFailed, change.status)
	}
	assert.Empty(t, f.events.events)
}

func TestIngestSkipsWhenLockHeld(t *testing.T) {
	f := newFixture()
	f.lock.err = apperrors.New(apperrors.ErrCodeConflict, "ingestion already in progress")

	err := f.svc.Ingest(context.Background(), ingestRequest())
	require.NoError(t, err)
	assert.Zero(t, f.fetcher.calls)
	assert.Empty(t, f.store.saved)
}

func TestIngestProceedsWhenLockUnavailable(t *testing.T) {
	f := newFixture()
	f.lock.err = apperrors.New(apperrors.ErrCodeCacheError, "redis down")

	err := f.svc.Ingest(context.Background(), ingestRequest())
	require.NoError(t, err)
	require.Len(t, f.store.saved, 1)
}

func TestIngestRejectsMissingDocumentKey(t *testing.T) {
	f := newFixture()

	err := f.svc.Ingest(context.Background(), kafka.IngestRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.GetCode(err))
}

func TestIngestChunkerErrorFails(t *testing.T) {
	f := newFixture()
	f.chunker.chunks = nil
	f.chunker.err = document.ErrNoHeadings

	err := f.svc.Ingest(context.Background(), ingestRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNoHeadings, apperrors.GetCode(err))
	assert.Zero(t, f.docs.uploads)
}
