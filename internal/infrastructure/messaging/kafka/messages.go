// Package kafka carries the ingestion work queue and the case event
// stream.
package kafka

import "time"

// IngestRequest asks the worker to ingest one decision document from the
// object store.
type IngestRequest struct {
	// DocumentKey is the object-store key of the source PDF.
	DocumentKey string `json:"document_key"`

	// CaseReference optionally pins the reference instead of detecting it
	// from the filename or document text.
	CaseReference string `json:"case_reference,omitempty"`

	RequestedAt time.Time `json:"requested_at"`
}

// Case event types.
const (
	EventCaseIngested = "case.ingested"
	EventCasePartial  = "case.partial_embeddings"
	EventCaseFailed   = "case.failed"
)

// CaseEvent announces the outcome of one ingestion run.
type CaseEvent struct {
	Type          string    `json:"type"`
	CaseReference string    `json:"case_reference"`
	DocumentKey   string    `json:"document_key,omitempty"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
