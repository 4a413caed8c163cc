package prediction

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
)

// AuralSimilarity scores two wordmarks phonetically: Double Metaphone
// codes compared with Jaro-Winkler. When either mark yields no phonetic
// code (digits, symbols) the marks themselves are compared directly.
func AuralSimilarity(applicantMark, opponentMark string) (float64, caselaw.SimilarityDegree) {
	a := strings.TrimSpace(applicantMark)
	o := strings.TrimSpace(opponentMark)
	if a == "" && o == "" {
		return 1.0, caselaw.AuralThresholds.DegreeForScore(1.0)
	}

	aCode, _ := matchr.DoubleMetaphone(a)
	oCode, _ := matchr.DoubleMetaphone(o)

	var score float64
	if aCode == "" || oCode == "" {
		score = matchr.JaroWinkler(strings.ToLower(a), strings.ToLower(o), false)
	} else {
		score = matchr.JaroWinkler(aCode, oCode, false)
	}
	return score, caselaw.AuralThresholds.DegreeForScore(score)
}
