// Package oracle defines the contract between the extraction pipeline and
// the external text-understanding service. Implementations live under
// internal/infrastructure/oracle.
package oracle

import (
	"context"
)

// ResultKind discriminates the three outcomes of an oracle call.
type ResultKind uint8

const (
	// KindValid means the oracle returned a payload that parsed as JSON.
	KindValid ResultKind = iota
	// KindMalformed means the oracle answered but the payload did not
	// parse. Treated as retryable: a fresh attempt usually succeeds.
	KindMalformed
	// KindProviderError means the call itself failed.
	KindProviderError
)

func (k ResultKind) String() string {
	switch k {
	case KindValid:
		return "valid"
	case KindMalformed:
		return "malformed"
	case KindProviderError:
		return "provider_error"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of one structured-generation call. Exactly
// one of Payload or Err is meaningful, selected by Kind.
type Result struct {
	Kind    ResultKind
	Payload []byte
	Err     error
}

func Valid(payload []byte) Result      { return Result{Kind: KindValid, Payload: payload} }
func Malformed(err error) Result       { return Result{Kind: KindMalformed, Err: err} }
func ProviderFailure(err error) Result { return Result{Kind: KindProviderError, Err: err} }

// GenerateRequest is one structured-generation call against an uploaded
// document. SectionFocus narrows the prompt to a named document section;
// empty means whole-document extraction.
type GenerateRequest struct {
	DocumentRef  string
	Prompt       string
	SystemPrompt string
	SectionFocus string
	Schema       map[string]any
}

// TextOracle produces schema-constrained JSON from a prompt over an
// uploaded document.
type TextOracle interface {
	GenerateStructured(ctx context.Context, req GenerateRequest) Result
}

// DocumentHandle identifies a document uploaded to the oracle's file store.
type DocumentHandle struct {
	Ref  string
	Name string
}

// DocumentStore uploads source documents for reference in prompts and
// removes them when the run finishes.
type DocumentStore interface {
	Upload(ctx context.Context, name string, data []byte, mimeType string) (DocumentHandle, error)
	Delete(ctx context.Context, handle DocumentHandle) error
}

// Embedder turns text chunks into dense vectors. Implementations batch
// requests internally up to the provider's limit.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// BatchItem is one unit of work submitted to a remote batch job, keyed so
// results can be re-associated after completion.
type BatchItem struct {
	Key     string
	Request GenerateRequest
}

// BatchRunner submits a set of generation requests as one remote job and
// polls it to completion. Results map item keys to outcomes; a missing key
// means the provider dropped the item.
type BatchRunner interface {
	RunBatch(ctx context.Context, items []BatchItem) (map[string]Result, error)
}
