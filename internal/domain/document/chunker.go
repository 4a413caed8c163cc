package document

import (
	"context"
	"regexp"
	"sort"
	"strings"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// Chunker splits a document into chunks. caseRef tags every produced chunk.
type Chunker interface {
	Chunk(ctx context.Context, caseRef string, pages []PageText) ([]Chunk, error)
}

// ErrNoHeadings reports that heading detection found no section boundary.
// Callers decide whether to fall back to fixed-window chunking or abort.
var ErrNoHeadings = apperrors.New(apperrors.ErrCodeNoHeadings, "no section headings found in document")

// headingPatterns are the section headings that UKIPO and EUIPO opposition
// decisions use. Matching is case-insensitive against each trimmed line.
var headingPatterns = compilePatterns([]string{
	`Background\s+&\s+pleadings`,
	`(?:Opponent|Applicant)'?s?\s+evidence`,
	`Relevant\s+statutory\s+provision`,
	`Proof\s+of\s+use`,
	`Comparison\s+of\s+(?:the\s+)?goods\s+and\s+services`,
	`Average\s+consumer\s+and\s+the\s+(?:nature\s+of\s+the\s+)?purchasing\s+(?:process|act)`,
	`Comparison\s+of\s+(?:the\s+)?(?:trade\s+)?marks`,
	`Distinctive\s+character\s+of\s+the\s+earlier\s+mark`,
	`Likelihood\s+of\s+confusion`,
	`Section\s+5\(\d\)(?:\([a-z]\))?`,
	`Conclusion`,
	`Decision`,
	`Costs`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// HeadingChunker splits a document into one chunk per detected section.
type HeadingChunker struct{}

func NewHeadingChunker() *HeadingChunker { return &HeadingChunker{} }

// Chunk detects section headings line by line and cuts the joined text at
// each marker position. Returns ErrNoHeadings when no line matches.
func (h *HeadingChunker) Chunk(_ context.Context, caseRef string, pages []PageText) ([]Chunk, error) {
	markers := DetectMarkers(pages)
	if len(markers) == 0 {
		return nil, ErrNoHeadings
	}
	fullText := JoinPages(pages)
	return ChunksFromMarkers(caseRef, fullText, markers), nil
}

// DetectMarkers scans every page line for a known heading and records its
// byte position within the joined text. At most one marker per line.
func DetectMarkers(pages []PageText) []Marker {
	var markers []Marker
	position := 0
	for _, page := range pages {
		if page.Text == "" {
			continue
		}
		lines := strings.Split(page.Text, "\n")
		offset := 0
		for _, line := range lines {
			clean := strings.TrimSpace(line)
			for _, pattern := range headingPatterns {
				if pattern.MatchString(clean) {
					markers = append(markers, Marker{
						Heading:  clean,
						Position: position + offset,
						Page:     page.Number,
					})
					break
				}
			}
			offset += len(line) + 1
		}
		position += len(page.Text) + 1
	}
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].Position < markers[j].Position })
	return markers
}

// ChunksFromMarkers cuts fullText at each marker, producing one chunk per
// section. Sections that trim to nothing are dropped; sequence numbers stay
// dense over the surviving chunks.
func ChunksFromMarkers(caseRef, fullText string, markers []Marker) []Chunk {
	bounds := append([]Marker{}, markers...)
	bounds = append(bounds, Marker{Heading: "END_OF_DOCUMENT", Position: len(fullText), Page: -1})

	var chunks []Chunk
	for i := 0; i < len(bounds)-1; i++ {
		start, end := bounds[i].Position, bounds[i+1].Position
		if start < 0 {
			start = 0
		}
		if end > len(fullText) {
			end = len(fullText)
		}
		if start >= end {
			continue
		}
		text := strings.TrimSpace(fullText[start:end])
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:          text,
			CaseReference: normalizeRefForStorage(caseRef),
			Section:       bounds[i].Heading,
			Page:          bounds[i].Page,
			Sequence:      len(chunks),
			Type:          ChunkTypeSection,
		})
	}
	return chunks
}

// WindowChunker is the fixed-window fallback: chunks of WindowWords words
// with OverlapWords words shared between consecutive chunks.
type WindowChunker struct {
	WindowWords  int
	OverlapWords int
}

func NewWindowChunker(window, overlap int) *WindowChunker {
	return &WindowChunker{WindowWords: window, OverlapWords: overlap}
}

func (w *WindowChunker) Chunk(_ context.Context, caseRef string, pages []PageText) ([]Chunk, error) {
	return w.ChunkText(caseRef, JoinPages(pages))
}

// ChunkText splits text by word count. An empty document yields no chunks.
func (w *WindowChunker) ChunkText(caseRef, text string) ([]Chunk, error) {
	if w.OverlapWords >= w.WindowWords {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "window overlap must be smaller than window size")
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	step := w.WindowWords - w.OverlapWords
	var chunks []Chunk
	for i := 0; i < len(words); i += step {
		end := i + w.WindowWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Text:          strings.Join(words[i:end], " "),
			CaseReference: normalizeRefForStorage(caseRef),
			Sequence:      len(chunks),
			Type:          ChunkTypeSimple,
		})
	}
	return chunks, nil
}

// FallbackChunker runs a primary chunker and, when it reports ErrNoHeadings
// and fallback is enabled, substitutes the window chunker. With fallback
// disabled the structural error propagates unchanged.
type FallbackChunker struct {
	Primary      Chunker
	Window       *WindowChunker
	AutoFallback bool
}

func (f *FallbackChunker) Chunk(ctx context.Context, caseRef string, pages []PageText) ([]Chunk, error) {
	chunks, err := f.Primary.Chunk(ctx, caseRef, pages)
	if err == nil {
		return chunks, nil
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeNoHeadings) || !f.AutoFallback {
		return nil, err
	}
	return f.Window.Chunk(ctx, caseRef, pages)
}

// normalizeRefForStorage makes a case reference safe for use as a storage
// key: "O/0959/23" becomes "O-0959-23".
func normalizeRefForStorage(ref string) string {
	return strings.ReplaceAll(ref, "/", "-")
}
