// Package document splits case decision documents into chunks suitable for
// embedding and section-targeted extraction.
package document

// PageText is the extracted text of one document page. Number is 1-based.
type PageText struct {
	Number int
	Text   string
}

// ChunkType records which chunking strategy produced a chunk.
type ChunkType string

const (
	ChunkTypeSection ChunkType = "section"
	ChunkTypeSimple  ChunkType = "simple"
	ChunkTypeVision  ChunkType = "vision"
)

// Chunk is one unit of document text with its provenance metadata.
type Chunk struct {
	ID            string    `json:"chunk_id,omitempty"`
	Text          string    `json:"text"`
	CaseReference string    `json:"case_reference"`
	Section       string    `json:"section,omitempty"`
	Page          int       `json:"page,omitempty"`
	Sequence      int       `json:"chunk_sequence"`
	Type          ChunkType `json:"chunk_type"`
}

// Marker is a detected section boundary within the joined document text.
type Marker struct {
	Heading  string
	Position int
	Page     int
}

// JoinPages concatenates page texts with newline separators, mirroring the
// position arithmetic used by marker detection. Empty pages are skipped.
func JoinPages(pages []PageText) string {
	var out []byte
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		out = append(out, p.Text...)
		out = append(out, '\n')
	}
	return string(out)
}
