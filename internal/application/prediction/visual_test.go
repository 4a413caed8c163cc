package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
)

func TestVisualSimilarityIdenticalMarks(t *testing.T) {
	score, degree := VisualSimilarity("MONSTER", "MONSTER")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, caselaw.DegreeIdentical, degree)
}

func TestVisualSimilarityIsCaseInsensitive(t *testing.T) {
	score, degree := VisualSimilarity("Monster", "MONSTER")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, caselaw.DegreeIdentical, degree)
}

func TestVisualSimilarityOneEdit(t *testing.T) {
	// 1 edit over 8 runes scores 0.875, a high degree
	score, degree := VisualSimilarity("abcdefgh", "abcdefgx")
	assert.InDelta(t, 0.875, score, 1e-9)
	assert.Equal(t, caselaw.DegreeHigh, degree)
}

func TestVisualSimilarityDisjointMarks(t *testing.T) {
	score, degree := VisualSimilarity("ZEBRA", "QUOIN")
	assert.Less(t, score, 0.5)
	assert.Equal(t, caselaw.DegreeDissimilar, degree)
}

func TestVisualSimilarityEmptyMarks(t *testing.T) {
	score, degree := VisualSimilarity("", "")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, caselaw.DegreeIdentical, degree)

	score, degree = VisualSimilarity("MARK", "")
	assert.Equal(t, 0.0, score)
	assert.Equal(t, caselaw.DegreeDissimilar, degree)
}
