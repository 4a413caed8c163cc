package document

import (
	"context"
	"strings"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// OutlineSection is one model-reported section with its 1-based inclusive
// page range.
type OutlineSection struct {
	Heading   string
	StartPage int
	EndPage   int
}

// OutlineAnalyzer asks an external model for the structural outline of a
// document. Implementations send page text (or the rendered pages) to a
// vision-capable model and return the detected sections with their page
// ranges.
type OutlineAnalyzer interface {
	DocumentOutline(ctx context.Context, pages []PageText) ([]OutlineSection, error)
}

// VisionChunker cuts the document into the model-reported sections, one
// chunk per page range, instead of relying on heading regexes. Useful for
// scanned decisions where layout survives but text headings do not match
// the known patterns. Sections with an invalid page range (out of
// document bounds, or start after end) are skipped and logged.
type VisionChunker struct {
	Analyzer OutlineAnalyzer
	Logger   logging.Logger
}

func NewVisionChunker(analyzer OutlineAnalyzer, logger logging.Logger) *VisionChunker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VisionChunker{Analyzer: analyzer, Logger: logger.Named("chunker.vision")}
}

func (v *VisionChunker) Chunk(ctx context.Context, caseRef string, pages []PageText) ([]Chunk, error) {
	sections, err := v.Analyzer.DocumentOutline(ctx, pages)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNoChunks, "document outline analysis failed")
	}

	lastPage := 0
	for _, p := range pages {
		if p.Number > lastPage {
			lastPage = p.Number
		}
	}

	var chunks []Chunk
	for _, s := range sections {
		if s.StartPage < 1 || s.EndPage > lastPage || s.StartPage > s.EndPage {
			v.Logger.Warn("skipping section with invalid page range",
				logging.String("heading", s.Heading),
				logging.Int("start_page", s.StartPage),
				logging.Int("end_page", s.EndPage),
				logging.Int("document_pages", lastPage),
			)
			continue
		}
		text := strings.TrimSpace(pageRangeText(pages, s.StartPage, s.EndPage))
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:          text,
			CaseReference: normalizeRefForStorage(caseRef),
			Section:       s.Heading,
			Page:          s.StartPage,
			Sequence:      len(chunks),
			Type:          ChunkTypeVision,
		})
	}
	if len(chunks) == 0 {
		return nil, ErrNoHeadings
	}
	return chunks, nil
}

// pageRangeText joins the text of the pages numbered start through end
// inclusive.
func pageRangeText(pages []PageText, start, end int) string {
	var parts []string
	for _, p := range pages {
		if p.Number >= start && p.Number <= end && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}
