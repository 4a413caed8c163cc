// Package prediction assesses similarity between trademarks and predicts
// opposition outcomes. Visual and aural comparison are local string
// metrics; conceptual comparison, goods-and-services assessment and the
// final outcome synthesis go through the oracle.
package prediction

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
)

// VisualSimilarity scores two wordmarks by normalized Levenshtein,
// 1 - distance/max(len), over their lower-cased forms. Note this is not
// an indel ratio (2M/(len1+len2)): substitution-heavy pairs score lower
// here than under that metric. Two empty marks count as identical.
func VisualSimilarity(applicantMark, opponentMark string) (float64, caselaw.SimilarityDegree) {
	a := strings.ToLower(strings.TrimSpace(applicantMark))
	o := strings.ToLower(strings.TrimSpace(opponentMark))

	longest := len([]rune(a))
	if n := len([]rune(o)); n > longest {
		longest = n
	}

	score := 1.0
	if longest > 0 {
		dist := matchr.Levenshtein(a, o)
		score = 1.0 - float64(dist)/float64(longest)
	}
	if score < 0 {
		score = 0
	}
	return score, caselaw.VisualThresholds.DegreeForScore(score)
}
