package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CasesClient calls the /api/v1/cases endpoints.
type CasesClient struct {
	client *Client
}

// CaseRecord is a stored case with its ingestion state. Document carries
// the extracted decision as raw JSON so the SDK does not chase the full
// document schema.
type CaseRecord struct {
	Reference    string          `json:"reference"`
	IngestStatus string          `json:"ingest_status"`
	IngestNote   string          `json:"ingest_note,omitempty"`
	SourceKey    string          `json:"source_key,omitempty"`
	Document     json.RawMessage `json:"document"`
	ChunkCount   int             `json:"chunk_count"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Get fetches one case by reference. Both "O/0959/23" and the storage
// form "O-0959-23" are accepted; slashes are sent in the storage form.
func (s *CasesClient) Get(ctx context.Context, reference string) (*CaseRecord, error) {
	if reference == "" {
		return nil, fmt.Errorf("markip: case reference is required")
	}
	reference = strings.ReplaceAll(reference, "/", "-")
	var out CaseRecord
	path := "/api/v1/cases/" + url.PathEscape(reference)
	if err := s.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ingestRequest struct {
	DocumentKey   string `json:"document_key"`
	CaseReference string `json:"case_reference,omitempty"`
}

// Ingest queues the object-store document for ingestion. The empty
// caseReference lets the pipeline detect the reference itself.
func (s *CasesClient) Ingest(ctx context.Context, documentKey, caseReference string) error {
	if documentKey == "" {
		return fmt.Errorf("markip: document key is required")
	}
	return s.client.post(ctx, "/api/v1/cases/ingest", ingestRequest{
		DocumentKey:   documentKey,
		CaseReference: caseReference,
	}, nil)
}
