package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
)

func TestAuralSimilarityHomophones(t *testing.T) {
	// KOLA and COLA share a phonetic code despite differing first letters
	score, degree := AuralSimilarity("KOLA", "COLA")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, caselaw.DegreeIdentical, degree)
}

func TestAuralSimilarityIdenticalMarks(t *testing.T) {
	score, degree := AuralSimilarity("MONSTER", "MONSTER")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, caselaw.DegreeIdentical, degree)
}

func TestAuralSimilarityDissimilarMarks(t *testing.T) {
	score, degree := AuralSimilarity("ZEBRA", "MONSTER")
	assert.Less(t, score, 0.55)
	assert.Equal(t, caselaw.DegreeDissimilar, degree)
}

func TestAuralSimilarityFallsBackWithoutPhoneticCode(t *testing.T) {
	// digit-only marks produce no phonetic code, so the marks themselves
	// are compared
	score, degree := AuralSimilarity("4711", "4711")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, caselaw.DegreeIdentical, degree)
}

func TestAuralSimilarityEmptyMarks(t *testing.T) {
	score, degree := AuralSimilarity("", "")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, caselaw.DegreeIdentical, degree)
}
