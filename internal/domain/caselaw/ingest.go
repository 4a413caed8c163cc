package caselaw

// IngestStatus tracks a case record through the ingestion pipeline.
type IngestStatus string

const (
	// IngestPending means the request is queued but processing has not begun.
	IngestPending IngestStatus = "pending"
	// IngestProcessing means the pipeline currently owns the document.
	IngestProcessing IngestStatus = "processing"
	// IngestSucceeded means the document was extracted, validated, stored
	// and indexed end to end.
	IngestSucceeded IngestStatus = "succeeded"
	// IngestPartialEmbeddings means the validated case is stored but some
	// or all chunk vectors could not be indexed.
	IngestPartialEmbeddings IngestStatus = "partial_embeddings"
	// IngestFailed means no validated case document was produced.
	IngestFailed IngestStatus = "failed"
)

func (s IngestStatus) IsValid() bool {
	switch s {
	case IngestPending, IngestProcessing, IngestSucceeded, IngestPartialEmbeddings, IngestFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the pipeline is finished with this record.
func (s IngestStatus) Terminal() bool {
	switch s {
	case IngestSucceeded, IngestPartialEmbeddings, IngestFailed:
		return true
	default:
		return false
	}
}
