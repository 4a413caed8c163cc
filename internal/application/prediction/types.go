package prediction

import (
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
)

// MarkSimilarity is the combined three-dimension assessment of two marks.
type MarkSimilarity struct {
	Visual          caselaw.SimilarityDegree     `json:"visual"`
	Aural           caselaw.SimilarityDegree     `json:"aural"`
	Conceptual      caselaw.ConceptualSimilarity `json:"conceptual"`
	Overall         caselaw.SimilarityDegree     `json:"overall_similarity"`
	VisualScore     float64                      `json:"visual_score"`
	AuralScore      float64                      `json:"aural_score"`
	ConceptualScore float64                      `json:"conceptual_score"`
	OverallScore    float64                      `json:"overall_similarity_score"`
	Reasoning       string                       `json:"reasoning"`
}

// ConceptualResult is a single-dimension conceptual assessment.
type ConceptualResult struct {
	Score     float64                      `json:"score"`
	Degree    caselaw.ConceptualSimilarity `json:"degree"`
	Reasoning string                       `json:"reasoning"`
}

// GsTerm is one good-or-service term with its Nice classification class.
type GsTerm struct {
	Term  string `json:"term"`
	Class int    `json:"class"`
}

// GsSimilarity is the assessment of one applicant/opponent term pair.
type GsSimilarity struct {
	ApplicantTerm         string                   `json:"applicant_term"`
	OpponentTerm          string                   `json:"opponent_term"`
	Similarity            caselaw.SimilarityDegree `json:"similarity"`
	SimilarityScore       float64                  `json:"similarity_score"`
	IsCompetitive         bool                     `json:"is_competitive"`
	IsComplementary       bool                     `json:"is_complementary"`
	LikelihoodOfConfusion bool                     `json:"likelihood_of_confusion"`
	ConfusionType         *caselaw.ConfusionType   `json:"confusion_type,omitempty"`
	Reasoning             string                   `json:"reasoning"`
}

// CaseInput carries the mark details needed to predict an outcome.
type CaseInput struct {
	ApplicantMarks []caselaw.ApplicantMark `json:"applicant_marks"`
	OpponentMarks  []caselaw.OpponentMark  `json:"opponent_marks"`
}

// CasePrediction is the synthesized outcome prediction with its
// supporting assessments.
type CasePrediction struct {
	PredictedOutcome caselaw.OppositionOutcome `json:"predicted_outcome"`
	ConfidenceScore  float64                   `json:"confidence_score"`
	Reasoning        string                    `json:"detailed_reasoning"`
	MarkSimilarity   MarkSimilarity            `json:"mark_similarity_assessment"`
	GoodsServices    []GsSimilarity            `json:"goods_services_assessments"`
}
