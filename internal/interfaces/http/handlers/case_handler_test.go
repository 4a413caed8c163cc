package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/messaging/kafka"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

type fakeCaseReader struct {
	records map[string]*postgres.CaseRecord
}

func (f *fakeCaseReader) GetCase(_ context.Context, reference string) (*postgres.CaseRecord, error) {
	rec, ok := f.records[reference]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeCaseNotFound, "case not found")
	}
	return rec, nil
}

type fakeEnqueuer struct {
	requests []kafka.IngestRequest
	err      error
}

func (f *fakeEnqueuer) PublishIngestRequest(_ context.Context, req kafka.IngestRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

func caseRouter(reader CaseReader, enqueue IngestEnqueuer) *gin.Engine {
	r := gin.New()
	h := NewCaseHandler(reader, enqueue)
	r.GET("/cases/:reference", h.Get)
	r.POST("/cases/ingest", h.Ingest)
	return r
}

func TestGetCase(t *testing.T) {
	ref := "O/0959/23"
	// the URL carries the dash storage form; the repository accepts both
	reader := &fakeCaseReader{records: map[string]*postgres.CaseRecord{
		"O-0959-23": {
			Reference: ref,
			Status:    caselaw.IngestSucceeded,
			SourceKey: "cases/O-0959-23.pdf",
			Document:  &caselaw.Case{CaseReference: &ref},
			UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	r := caseRouter(reader, &fakeEnqueuer{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cases/O-0959-23", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reference":"O/0959/23"`)
	assert.Contains(t, rec.Body.String(), `"ingest_status":"succeeded"`)
}

func TestGetCaseNotFound(t *testing.T) {
	r := caseRouter(&fakeCaseReader{records: map[string]*postgres.CaseRecord{}}, &fakeEnqueuer{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cases/O-0000-00", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), string(apperrors.ErrCodeCaseNotFound))
}

func TestIngestQueuesRequest(t *testing.T) {
	enqueue := &fakeEnqueuer{}
	r := caseRouter(&fakeCaseReader{}, enqueue)

	rec := postJSON(t, r, "/cases/ingest", `{"document_key":"cases/O-0959-23.pdf","case_reference":"O/0959/23"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, enqueue.requests, 1)
	assert.Equal(t, "cases/O-0959-23.pdf", enqueue.requests[0].DocumentKey)
	assert.Equal(t, "O/0959/23", enqueue.requests[0].CaseReference)
}

func TestIngestRequiresDocumentKey(t *testing.T) {
	r := caseRouter(&fakeCaseReader{}, &fakeEnqueuer{})

	rec := postJSON(t, r, "/cases/ingest", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestBrokerFailure(t *testing.T) {
	r := caseRouter(&fakeCaseReader{}, &fakeEnqueuer{
		err: apperrors.New(apperrors.ErrCodeExternalService, "broker unreachable"),
	})

	rec := postJSON(t, r, "/cases/ingest", `{"document_key":"cases/x.pdf"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
