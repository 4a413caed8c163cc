package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// CaseRecord is one ingested decision: the validated document, the chunks
// it was cut into, and operational metadata about the ingestion run.
type CaseRecord struct {
	Reference  string
	Document   *caselaw.Case
	SourceKey  string
	Status     caselaw.IngestStatus
	StatusNote string
	Chunks     []document.Chunk
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CaseRepository persists case records. All multi-row writes for one case
// happen inside a single transaction, so readers never observe a case with
// half its chunks.
type CaseRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewCaseRepository(pool *pgxpool.Pool, logger logging.Logger) *CaseRepository {
	return &CaseRepository{pool: pool, logger: logger.Named("cases")}
}

// SaveCase stores a freshly ingested case. An existing record under the
// same reference is fully replaced, chunks included.
func (r *CaseRepository) SaveCase(ctx context.Context, rec *CaseRecord) error {
	if rec.Reference == "" {
		return apperrors.New(apperrors.ErrCodeBadRequest, "case reference is empty")
	}
	doc, err := json.Marshal(rec.Document)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal case document")
	}
	ref := storageRef(rec.Reference)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO cases (reference, document, source_key, ingest_status, ingest_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (reference) DO UPDATE SET
			document = EXCLUDED.document,
			source_key = EXCLUDED.source_key,
			ingest_status = EXCLUDED.ingest_status,
			ingest_note = EXCLUDED.ingest_note,
			updated_at = now()`,
		ref, doc, rec.SourceKey, string(rec.Status), rec.StatusNote,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "upsert case")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM case_chunks WHERE case_reference = $1`, ref); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "clear previous chunks")
	}
	for _, chunk := range rec.Chunks {
		_, err := tx.Exec(ctx, `
			INSERT INTO case_chunks (id, case_reference, section, page, seq, chunk_type, content)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			chunk.ID, ref, chunk.Section, chunk.Page, chunk.Sequence, string(chunk.Type), chunk.Text,
		)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "insert chunk").WithDetail(chunk.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "commit case")
	}
	r.logger.Info("case stored",
		logging.String("reference", ref),
		logging.Int("chunks", len(rec.Chunks)))
	return nil
}

// GetCase loads a case record with its chunks. The reference is accepted
// in either the slash or the dash form.
func (r *CaseRepository) GetCase(ctx context.Context, reference string) (*CaseRecord, error) {
	ref := storageRef(reference)
	rec := &CaseRecord{Reference: ref}

	var doc []byte
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT document, source_key, ingest_status, ingest_note, created_at, updated_at
		FROM cases WHERE reference = $1`, ref,
	).Scan(&doc, &rec.SourceKey, &status, &rec.StatusNote, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrCodeCaseNotFound, "case not found").WithDetail(ref)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query case")
	}
	rec.Status = caselaw.IngestStatus(status)

	if len(doc) > 0 && string(doc) != "null" {
		var c caselaw.Case
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal case document")
		}
		rec.Document = &c
	}

	chunks, err := r.chunksForCase(ctx, ref)
	if err != nil {
		return nil, err
	}
	rec.Chunks = chunks
	return rec, nil
}

// ReplaceCase swaps the stored document for an already-validated revision.
// Validation runs again here: invalid documents never reach the table no
// matter which path produced them.
func (r *CaseRepository) ReplaceCase(ctx context.Context, reference string, c *caselaw.Case) error {
	violations, err := caselaw.ValidateCase(c)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return apperrors.New(apperrors.ErrCodeCaseValidation, "replacement document failed validation").
			WithDetail(violations[0].Path + ": " + violations[0].Message)
	}

	doc, err := json.Marshal(c)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal case document")
	}
	ref := storageRef(reference)

	tag, err := r.pool.Exec(ctx, `
		UPDATE cases SET document = $2, updated_at = now() WHERE reference = $1`, ref, doc)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "replace case document")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.ErrCodeCaseNotFound, "case not found").WithDetail(ref)
	}
	return nil
}

// UpdateIngestStatus records operational pipeline state. It creates the
// case row when the pipeline starts before any document exists.
func (r *CaseRepository) UpdateIngestStatus(ctx context.Context, reference string, status caselaw.IngestStatus, note string) error {
	ref := storageRef(reference)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cases (reference, document, ingest_status, ingest_note, created_at, updated_at)
		VALUES ($1, NULL, $2, $3, now(), now())
		ON CONFLICT (reference) DO UPDATE SET
			ingest_status = EXCLUDED.ingest_status,
			ingest_note = EXCLUDED.ingest_note,
			updated_at = now()`,
		ref, string(status), note,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "update ingest status")
	}
	return nil
}

// GetChunksByIDs resolves vector-search hits back to chunk text. Unknown
// IDs are silently absent from the result.
func (r *CaseRepository) GetChunksByIDs(ctx context.Context, ids []string) ([]document.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_reference, section, page, seq, chunk_type, content
		FROM case_chunks WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query chunks by id")
	}
	defer rows.Close()
	return scanChunks(rows)
}

func (r *CaseRepository) chunksForCase(ctx context.Context, ref string) ([]document.Chunk, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_reference, section, page, seq, chunk_type, content
		FROM case_chunks WHERE case_reference = $1 ORDER BY seq`, ref)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query case chunks")
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows pgx.Rows) ([]document.Chunk, error) {
	var chunks []document.Chunk
	for rows.Next() {
		var c document.Chunk
		var chunkType string
		if err := rows.Scan(&c.ID, &c.CaseReference, &c.Section, &c.Page, &c.Sequence, &chunkType, &c.Text); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan chunk row")
		}
		c.Type = document.ChunkType(chunkType)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate chunk rows")
	}
	return chunks, nil
}

func storageRef(reference string) string {
	return strings.ReplaceAll(reference, "/", "-")
}
