// Package pdftext extracts per-page text from PDF case decisions.
package pdftext

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// Extractor reads PDF bytes and produces one PageText per page, with line
// breaks reconstructed from text rows so heading detection can run line by
// line.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Extract parses the document and returns the text of every page. Pages
// that yield no text are returned with an empty Text so page numbering
// stays aligned with the source document.
func (e *Extractor) Extract(data []byte) ([]document.PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTextExtractionFailed, "open pdf")
	}

	pages := make([]document.PageText, 0, reader.NumPage())
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			pages = append(pages, document.PageText{Number: num})
			continue
		}
		text := pageText(page)
		pages = append(pages, document.PageText{Number: num, Text: text})
	}

	if allEmpty(pages) {
		return nil, apperrors.New(apperrors.ErrCodeTextExtractionFailed, "document contains no extractable text")
	}
	return pages, nil
}

// pageText rebuilds line structure from positioned text rows. Rows come
// back top-to-bottom; each row becomes one line.
func pageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		// fall back to the flat text stream
		flat, ferr := page.GetPlainText(nil)
		if ferr != nil {
			return ""
		}
		return flat
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
	}
	return b.String()
}

func allEmpty(pages []document.PageText) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}
