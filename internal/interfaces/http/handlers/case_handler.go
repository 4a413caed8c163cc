package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/messaging/kafka"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// CaseReader looks up stored case records.
type CaseReader interface {
	GetCase(ctx context.Context, reference string) (*postgres.CaseRecord, error)
}

// IngestEnqueuer queues ingestion requests for the worker.
type IngestEnqueuer interface {
	PublishIngestRequest(ctx context.Context, req kafka.IngestRequest) error
}

type CaseHandler struct {
	cases   CaseReader
	enqueue IngestEnqueuer
}

func NewCaseHandler(cases CaseReader, enqueue IngestEnqueuer) *CaseHandler {
	return &CaseHandler{cases: cases, enqueue: enqueue}
}

type caseResponse struct {
	Reference    string               `json:"reference"`
	IngestStatus caselaw.IngestStatus `json:"ingest_status"`
	IngestNote   string               `json:"ingest_note,omitempty"`
	SourceKey    string               `json:"source_key,omitempty"`
	Document     *caselaw.Case        `json:"document"`
	ChunkCount   int                  `json:"chunk_count"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Get handles GET /cases/:reference. The reference accepts both the
// slash form (URL-encoded) and the dash storage form.
func (h *CaseHandler) Get(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		respondError(c, apperrors.New(apperrors.ErrCodeBadRequest, "case reference is required"))
		return
	}
	rec, err := h.cases.GetCase(c.Request.Context(), reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caseResponse{
		Reference:    rec.Reference,
		IngestStatus: rec.Status,
		IngestNote:   rec.StatusNote,
		SourceKey:    rec.SourceKey,
		Document:     rec.Document,
		ChunkCount:   len(rec.Chunks),
		UpdatedAt:    rec.UpdatedAt,
	})
}

type ingestRequest struct {
	DocumentKey   string `json:"document_key"`
	CaseReference string `json:"case_reference,omitempty"`
}

// Ingest handles POST /cases/ingest: it queues the document for the
// worker and returns immediately.
func (h *CaseHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DocumentKey == "" {
		respondError(c, apperrors.New(apperrors.ErrCodeBadRequest, "document_key is required"))
		return
	}
	err := h.enqueue.PublishIngestRequest(c.Request.Context(), kafka.IngestRequest{
		DocumentKey:   req.DocumentKey,
		CaseReference: req.CaseReference,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":       "queued",
		"document_key": req.DocumentKey,
	})
}
