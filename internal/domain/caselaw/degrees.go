package caselaw

// SimilarityDegree is the ordered categorical scale used for visual, aural,
// goods-and-services and overall similarity assessments.
type SimilarityDegree string

const (
	DegreeIdentical  SimilarityDegree = "identical"
	DegreeHigh       SimilarityDegree = "high_degree"
	DegreeMedium     SimilarityDegree = "medium_degree"
	DegreeLow        SimilarityDegree = "low_degree"
	DegreeDissimilar SimilarityDegree = "dissimilar"
)

func (d SimilarityDegree) IsValid() bool {
	switch d {
	case DegreeIdentical, DegreeHigh, DegreeMedium, DegreeLow, DegreeDissimilar:
		return true
	}
	return false
}

// Rank orders degrees from dissimilar (0) to identical (4). Invalid
// degrees rank below dissimilar.
func (d SimilarityDegree) Rank() int {
	switch d {
	case DegreeIdentical:
		return 4
	case DegreeHigh:
		return 3
	case DegreeMedium:
		return 2
	case DegreeLow:
		return 1
	case DegreeDissimilar:
		return 0
	}
	return -1
}

// SimilarityDegrees lists the scale from most to least similar.
func SimilarityDegrees() []SimilarityDegree {
	return []SimilarityDegree{DegreeIdentical, DegreeHigh, DegreeMedium, DegreeLow, DegreeDissimilar}
}

// ConceptualSimilarity extends SimilarityDegree with "neutral", used when
// neither mark conveys a concept.
type ConceptualSimilarity string

const (
	ConceptIdentical  ConceptualSimilarity = "identical"
	ConceptHigh       ConceptualSimilarity = "high_degree"
	ConceptMedium     ConceptualSimilarity = "medium_degree"
	ConceptLow        ConceptualSimilarity = "low_degree"
	ConceptDissimilar ConceptualSimilarity = "dissimilar"
	ConceptNeutral    ConceptualSimilarity = "neutral"
)

func (c ConceptualSimilarity) IsValid() bool {
	switch c {
	case ConceptIdentical, ConceptHigh, ConceptMedium, ConceptLow, ConceptDissimilar, ConceptNeutral:
		return true
	}
	return false
}

// Degree maps a conceptual assessment onto the base scale. Neutral carries
// no similarity weight and maps to dissimilar.
func (c ConceptualSimilarity) Degree() SimilarityDegree {
	if c == ConceptNeutral {
		return DegreeDissimilar
	}
	return SimilarityDegree(c)
}

// DegreeThresholds are the inclusive lower bounds that translate a
// numeric similarity score in [0, 1] into a categorical degree. A score
// below Low maps to dissimilar.
type DegreeThresholds struct {
	Identical float64
	High      float64
	Medium    float64
	Low       float64
}

// Threshold tables for each similarity dimension. Aural thresholds sit
// higher than visual because phonetic metrics saturate faster; the overall
// table is looser to absorb the weighted blend.
var (
	VisualThresholds  = DegreeThresholds{Identical: 0.95, High: 0.80, Medium: 0.65, Low: 0.50}
	AuralThresholds   = DegreeThresholds{Identical: 0.95, High: 0.85, Medium: 0.70, Low: 0.55}
	OverallThresholds = DegreeThresholds{Identical: 0.95, High: 0.75, Medium: 0.55, Low: 0.40}
)

// Weights for blending per-dimension scores into the overall score.
const (
	VisualWeight     = 0.4
	AuralWeight      = 0.4
	ConceptualWeight = 0.2
)

// DegreeForScore maps score onto the categorical scale using t. Bounds are
// inclusive: a score exactly at a threshold takes the higher category.
func (t DegreeThresholds) DegreeForScore(score float64) SimilarityDegree {
	switch {
	case score >= t.Identical:
		return DegreeIdentical
	case score >= t.High:
		return DegreeHigh
	case score >= t.Medium:
		return DegreeMedium
	case score >= t.Low:
		return DegreeLow
	default:
		return DegreeDissimilar
	}
}

// OverallScore blends the three dimension scores with the fixed weights.
func OverallScore(visual, aural, conceptual float64) float64 {
	return VisualWeight*visual + AuralWeight*aural + ConceptualWeight*conceptual
}
