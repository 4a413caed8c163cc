package document

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

func decisionPages() []PageText {
	return []PageText{
		{Number: 1, Text: "TRADE MARKS ACT 1994\nIN THE MATTER OF O/0959/23\nBackground & pleadings\nThe applicant filed on 1 June 2022.\nThe opponent relies on an earlier mark."},
		{Number: 2, Text: "Comparison of goods and services\nThe goods are identical.\nComparison of marks\nThe marks share the element LUMIN."},
		{Number: 3, Text: "Likelihood of confusion\nThe average consumer would be confused.\nConclusion\nThe opposition succeeds.\nCosts\nThe applicant shall pay 700 pounds."},
	}
}

func TestHeadingChunker_SplitsOnHeadings(t *testing.T) {
	chunks, err := NewHeadingChunker().Chunk(context.Background(), "O/0959/23", decisionPages())
	require.NoError(t, err)
	require.Len(t, chunks, 6)

	assert.Equal(t, "Background & pleadings", chunks[0].Section)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "Comparison of goods and services", chunks[1].Section)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, "Comparison of marks", chunks[2].Section)
	assert.Equal(t, "Likelihood of confusion", chunks[3].Section)
	assert.Equal(t, "Conclusion", chunks[4].Section)
	assert.Equal(t, "Costs", chunks[5].Section)

	for i, c := range chunks {
		assert.Equal(t, i, c.Sequence)
		assert.Equal(t, ChunkTypeSection, c.Type)
		assert.Equal(t, "O-0959-23", c.CaseReference)
		assert.True(t, strings.HasPrefix(c.Text, c.Section), "chunk %d should start at its heading", i)
	}
}

func TestHeadingChunker_CaseInsensitive(t *testing.T) {
	pages := []PageText{{Number: 1, Text: "LIKELIHOOD OF CONFUSION\nsome analysis"}}
	chunks, err := NewHeadingChunker().Chunk(context.Background(), "O/1/23", pages)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "LIKELIHOOD OF CONFUSION", chunks[0].Section)
}

func TestHeadingChunker_SectionPattern(t *testing.T) {
	pages := []PageText{{Number: 1, Text: "Section 5(2)(b)\nanalysis\nSection 5(3)\nmore analysis"}}
	chunks, err := NewHeadingChunker().Chunk(context.Background(), "O/2/23", pages)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
}

func TestHeadingChunker_NoHeadings(t *testing.T) {
	pages := []PageText{{Number: 1, Text: "just some unstructured prose without markers"}}
	_, err := NewHeadingChunker().Chunk(context.Background(), "O/3/23", pages)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoHeadings))
}

func TestHeadingChunker_Reconstruction(t *testing.T) {
	pages := decisionPages()
	chunks, err := NewHeadingChunker().Chunk(context.Background(), "O/0959/23", pages)
	require.NoError(t, err)

	markers := DetectMarkers(pages)
	full := JoinPages(pages)
	tail := strings.TrimSpace(full[markers[0].Position:])

	var rebuilt []string
	for _, c := range chunks {
		rebuilt = append(rebuilt, c.Text)
	}
	// concatenated section texts cover the document from the first
	// heading to the end, modulo trimmed boundary whitespace
	assert.Equal(t, stripSpace(tail), stripSpace(strings.Join(rebuilt, "")))
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestWindowChunker_OverlapAndCoverage(t *testing.T) {
	words := make([]string, 120)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
	}
	w := NewWindowChunker(50, 10)
	chunks, err := w.ChunkText("O/4/23", strings.Join(words, " "))
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "w000", strings.Fields(chunks[0].Text)[0])
	assert.Equal(t, "w040", strings.Fields(chunks[1].Text)[0])
	assert.Equal(t, "w080", strings.Fields(chunks[2].Text)[0])
	assert.Len(t, strings.Fields(chunks[0].Text), 50)
	assert.Len(t, strings.Fields(chunks[2].Text), 40)

	// last 10 words of one chunk repeat at the start of the next
	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	assert.Equal(t, first[40:], second[:10])

	for i, c := range chunks {
		assert.Equal(t, i, c.Sequence)
		assert.Equal(t, ChunkTypeSimple, c.Type)
	}
}

func TestWindowChunker_EmptyText(t *testing.T) {
	chunks, err := NewWindowChunker(500, 50).ChunkText("O/5/23", "   \n  ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestWindowChunker_RejectsBadOverlap(t *testing.T) {
	_, err := NewWindowChunker(50, 50).ChunkText("O/6/23", "some words here")
	assert.Error(t, err)
}

func TestFallbackChunker_SubstitutesWindows(t *testing.T) {
	f := &FallbackChunker{
		Primary:      NewHeadingChunker(),
		Window:       NewWindowChunker(5, 1),
		AutoFallback: true,
	}
	pages := []PageText{{Number: 1, Text: "plain text with no recognised structure at all"}}
	chunks, err := f.Chunk(context.Background(), "O/7/23", pages)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, ChunkTypeSimple, chunks[0].Type)
}

func TestFallbackChunker_DisabledPropagatesError(t *testing.T) {
	f := &FallbackChunker{
		Primary:      NewHeadingChunker(),
		Window:       NewWindowChunker(5, 1),
		AutoFallback: false,
	}
	pages := []PageText{{Number: 1, Text: "plain text with no recognised structure at all"}}
	_, err := f.Chunk(context.Background(), "O/8/23", pages)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoHeadings))
}

func TestFallbackChunker_UsesPrimaryWhenHeadingsExist(t *testing.T) {
	f := &FallbackChunker{
		Primary:      NewHeadingChunker(),
		Window:       NewWindowChunker(500, 50),
		AutoFallback: true,
	}
	chunks, err := f.Chunk(context.Background(), "O/0959/23", decisionPages())
	require.NoError(t, err)
	assert.Equal(t, ChunkTypeSection, chunks[0].Type)
}

func TestExtractCaseReference(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		pages    []PageText
		want     string
	}{
		{"dash form in path", "decisions/O-0959-23.pdf", nil, "O/0959/23"},
		{"dash form normalised", "O-1234-23.pdf", nil, "O/1234/23"},
		{"from first page", "upload.pdf", []PageText{{Number: 1, Text: "IN THE MATTER OF O/4321/22"}}, "O/4321/22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCaseReference(tt.filename, tt.pages))
		})
	}
}

func TestExtractCaseReference_Fallback(t *testing.T) {
	ref := ExtractCaseReference("upload.pdf", []PageText{{Number: 1, Text: "no reference here"}})
	assert.True(t, strings.HasPrefix(ref, "CASE-"))
}
