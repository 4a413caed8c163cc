// Package ingestion runs the document-to-case pipeline: fetch the source
// PDF, chunk it, extract a structured case record through the oracle,
// persist it and index its chunk embeddings.
package ingestion

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// DocumentFetcher reads source documents from object storage.
type DocumentFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// PageExtractor turns raw PDF bytes into per-page text.
type PageExtractor interface {
	Extract(data []byte) ([]document.PageText, error)
}

// CaseExtractor runs the extraction pipeline over chunked text and returns
// a validated case record.
type CaseExtractor interface {
	Extract(ctx context.Context, docRef, caseRef string, chunks []document.Chunk) (*caselaw.Case, error)
}

// CaseStore persists case records and their ingestion status.
type CaseStore interface {
	SaveCase(ctx context.Context, rec *postgres.CaseRecord) error
	UpdateIngestStatus(ctx context.Context, reference string, status caselaw.IngestStatus, note string) error
}

// Embedder produces embedding vectors for chunk texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// VectorIndex stores chunk embeddings for similarity search.
type VectorIndex interface {
	UpsertChunkVectors(ctx context.Context, dims int, vectors []milvus.ChunkVector) error
}

// EventPublisher announces ingestion outcomes on the event topic.
type EventPublisher interface {
	PublishCaseEvent(ctx context.Context, event kafka.CaseEvent) error
}

// Locker serialises concurrent ingestion of the same document key.
type Locker interface {
	Acquire(ctx context.Context, documentKey string) (release func(context.Context), err error)
}

// Deps collects the pipeline's collaborators. Events, Lock and Metrics
// are optional; the rest are required.
type Deps struct {
	Documents  DocumentFetcher
	Pages      PageExtractor
	Chunker    document.Chunker
	OracleDocs oracle.DocumentStore
	Extractor  CaseExtractor
	Cases      CaseStore
	Embedder   Embedder
	Vectors    VectorIndex
	Events     EventPublisher
	Lock       Locker
	Metrics    *prometheus.AppMetrics
	Logger     logging.Logger

	// ChunkStrategy labels chunk metrics with the configured strategy.
	ChunkStrategy string
}

// Service executes ingestion requests end to end.
type Service struct {
	deps    Deps
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

func NewService(deps Deps) *Service {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &Service{
		deps:    deps,
		metrics: metrics,
		logger:  deps.Logger.Named("ingestion"),
	}
}

// Ingest processes one ingestion request. Transient failures are returned
// without touching the stored status so the queue redelivers them;
// permanent failures are recorded against the case and published as a
// failure event. A document whose embeddings could not be written is
// still stored, with partial status.
func (s *Service) Ingest(ctx context.Context, req kafka.IngestRequest) error {
	if req.DocumentKey == "" {
		return apperrors.New(apperrors.ErrCodeBadRequest, "ingest request missing document key")
	}

	logger := s.logger.With(logging.String("document_key", req.DocumentKey))

	if s.deps.Lock != nil {
		release, err := s.deps.Lock.Acquire(ctx, req.DocumentKey)
		switch {
		case err == nil:
			defer release(context.WithoutCancel(ctx))
		case apperrors.IsCode(err, apperrors.ErrCodeConflict):
			logger.Info("document already being ingested, skipping")
			return nil
		default:
			// Lock storage being down must not stop ingestion; the
			// pipeline upserts, so a duplicate run is harmless.
			logger.Warn("ingest lock unavailable, proceeding unlocked", logging.Err(err))
		}
	}

	start := time.Now()
	ref, status, err := s.run(ctx, req, logger)
	elapsed := time.Since(start)

	if err != nil {
		if apperrors.IsTransient(err) {
			logger.Warn("ingestion failed transiently, leaving for redelivery",
				logging.Err(err), logging.Duration("elapsed", elapsed))
			s.observeRun("transient", elapsed)
			return err
		}
		logger.Error("ingestion failed",
			logging.String("case_reference", ref),
			logging.Err(err), logging.Duration("elapsed", elapsed))
		if ref != "" {
			if statusErr := s.deps.Cases.UpdateIngestStatus(ctx, ref, caselaw.IngestFailed, err.Error()); statusErr != nil {
				logger.Error("record failed status", logging.Err(statusErr))
			}
		}
		s.publishEvent(ctx, kafka.CaseEvent{
			Type:          kafka.EventCaseFailed,
			CaseReference: ref,
			DocumentKey:   req.DocumentKey,
			Note:          err.Error(),
		})
		s.observeRun(string(caselaw.IngestFailed), elapsed)
		return err
	}

	eventType := kafka.EventCaseIngested
	if status == caselaw.IngestPartialEmbeddings {
		eventType = kafka.EventCasePartial
	}
	s.publishEvent(ctx, kafka.CaseEvent{
		Type:          eventType,
		CaseReference: ref,
		DocumentKey:   req.DocumentKey,
	})
	s.observeRun(string(status), elapsed)
	logger.Info("ingestion complete",
		logging.String("case_reference", ref),
		logging.String("status", string(status)),
		logging.Duration("elapsed", elapsed))
	return nil
}

// run executes the pipeline through persistence and embedding. It returns
// the case reference as soon as one is known so the caller can record
// failures against it.
func (s *Service) run(ctx context.Context, req kafka.IngestRequest, logger logging.Logger) (string, caselaw.IngestStatus, error) {
	data, err := s.deps.Documents.Fetch(ctx, req.DocumentKey)
	if err != nil {
		return req.CaseReference, "", err
	}

	pages, err := s.deps.Pages.Extract(data)
	if err != nil {
		return req.CaseReference, "", err
	}

	ref := req.CaseReference
	if ref == "" {
		ref = document.ExtractCaseReference(req.DocumentKey, pages)
	}
	if ref != "" {
		if err := s.deps.Cases.UpdateIngestStatus(ctx, ref, caselaw.IngestProcessing, ""); err != nil {
			logger.Warn("record processing status", logging.Err(err))
		}
	}

	chunks, err := s.deps.Chunker.Chunk(ctx, ref, pages)
	if err != nil {
		return ref, "", err
	}
	if len(chunks) == 0 {
		return ref, "", apperrors.New(apperrors.ErrCodeNoChunks, "document produced no chunks")
	}
	s.metrics.IngestChunks.WithLabelValues(s.deps.ChunkStrategy).Observe(float64(len(chunks)))
	if s.deps.ChunkStrategy == "headings" && chunks[0].Type == document.ChunkTypeSimple {
		s.metrics.ChunkFallbacksTotal.WithLabelValues().Inc()
	}

	handle, err := s.deps.OracleDocs.Upload(ctx, path.Base(req.DocumentKey), data, "application/pdf")
	if err != nil {
		return ref, "", err
	}
	defer func() {
		if err := s.deps.OracleDocs.Delete(context.WithoutCancel(ctx), handle); err != nil {
			logger.Warn("delete uploaded document", logging.Err(err))
		}
	}()

	extracted, err := s.deps.Extractor.Extract(ctx, handle.Ref, ref, chunks)
	if err != nil {
		return ref, "", err
	}
	if ref == "" && extracted.CaseReference != nil {
		ref = *extracted.CaseReference
	}

	storageRef := strings.ReplaceAll(ref, "/", "-")
	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = fmt.Sprintf("%s-chunk-%04d", storageRef, chunks[i].Sequence)
		}
		if chunks[i].CaseReference == "" {
			chunks[i].CaseReference = storageRef
		}
	}

	rec := &postgres.CaseRecord{
		Reference: ref,
		Document:  extracted,
		SourceKey: req.DocumentKey,
		Status:    caselaw.IngestSucceeded,
		Chunks:    chunks,
	}
	if err := s.deps.Cases.SaveCase(ctx, rec); err != nil {
		return ref, "", err
	}

	if err := s.indexChunks(ctx, storageRef, chunks); err != nil {
		logger.Warn("chunk embedding incomplete, case stored without vectors",
			logging.String("case_reference", ref), logging.Err(err))
		note := "embedding failed: " + err.Error()
		if statusErr := s.deps.Cases.UpdateIngestStatus(ctx, ref, caselaw.IngestPartialEmbeddings, note); statusErr != nil {
			logger.Error("record partial status", logging.Err(statusErr))
		}
		return ref, caselaw.IngestPartialEmbeddings, nil
	}

	return ref, caselaw.IngestSucceeded, nil
}

func (s *Service) indexChunks(ctx context.Context, storageRef string, chunks []document.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.deps.Embedder.EmbedTexts(ctx, texts)
	if err != nil {
		s.metrics.VectorUpsertsTotal.WithLabelValues("error").Inc()
		return err
	}
	if len(vectors) != len(chunks) {
		s.metrics.VectorUpsertsTotal.WithLabelValues("error").Inc()
		return apperrors.Newf(apperrors.ErrCodeEmbeddingFailed,
			"embedded %d of %d chunks", len(vectors), len(chunks))
	}

	rows := make([]milvus.ChunkVector, len(chunks))
	for i, chunk := range chunks {
		rows[i] = milvus.ChunkVector{
			ChunkID:       chunk.ID,
			CaseReference: storageRef,
			Embedding:     vectors[i],
		}
	}
	if err := s.deps.Vectors.UpsertChunkVectors(ctx, s.deps.Embedder.Dimensions(), rows); err != nil {
		s.metrics.VectorUpsertsTotal.WithLabelValues("error").Inc()
		return err
	}
	s.metrics.VectorUpsertsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (s *Service) publishEvent(ctx context.Context, event kafka.CaseEvent) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.PublishCaseEvent(ctx, event); err != nil {
		s.logger.Error("publish case event",
			logging.String("type", event.Type),
			logging.String("case_reference", event.CaseReference),
			logging.Err(err))
	}
}

func (s *Service) observeRun(outcome string, elapsed time.Duration) {
	s.metrics.IngestRunsTotal.WithLabelValues(outcome).Inc()
	s.metrics.IngestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
