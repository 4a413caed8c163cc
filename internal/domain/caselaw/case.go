// Package caselaw holds the canonical data model for trademark opposition
// case decisions. The types here are the single source of truth for
// structured extraction, persistence and the prediction API.
package caselaw

// Jurisdiction identifies the registry that issued a decision.
type Jurisdiction string

const (
	JurisdictionUKIPO Jurisdiction = "UKIPO"
	JurisdictionEUIPO Jurisdiction = "EUIPO"
)

func (j Jurisdiction) IsValid() bool {
	return j == JurisdictionUKIPO || j == JurisdictionEUIPO
}

// MarkType classifies the form of a trademark.
type MarkType string

const (
	MarkTypeWord             MarkType = "WORD"
	MarkTypeFigurative       MarkType = "FIGURATIVE"
	MarkTypeWordAndDevice    MarkType = "WORD_AND_DEVICE"
	MarkTypeThreeDimensional MarkType = "THREE_DIMENSIONAL"
)

func (t MarkType) IsValid() bool {
	switch t {
	case MarkTypeWord, MarkTypeFigurative, MarkTypeWordAndDevice, MarkTypeThreeDimensional:
		return true
	}
	return false
}

// MarkTypes lists all valid mark type values in declaration order.
func MarkTypes() []MarkType {
	return []MarkType{MarkTypeWord, MarkTypeFigurative, MarkTypeWordAndDevice, MarkTypeThreeDimensional}
}

// ProofOfUseOutcome records the result of a proof-of-use assessment.
type ProofOfUseOutcome string

const (
	UseProven        ProofOfUseOutcome = "use_proven"
	UseNotProven     ProofOfUseOutcome = "use_not_proven"
	UseNotApplicable ProofOfUseOutcome = "not_applicable"
)

func (o ProofOfUseOutcome) IsValid() bool {
	return o == UseProven || o == UseNotProven || o == UseNotApplicable
}

// DistinctiveCharacter grades the inherent distinctiveness of the earlier
// mark as assessed by the decision maker.
type DistinctiveCharacter string

const (
	DistinctiveVeryHigh DistinctiveCharacter = "very_high_degree"
	DistinctiveHigh     DistinctiveCharacter = "high_degree"
	DistinctiveMedium   DistinctiveCharacter = "medium_degree"
	DistinctiveLow      DistinctiveCharacter = "low_degree"
)

func (d DistinctiveCharacter) IsValid() bool {
	switch d {
	case DistinctiveVeryHigh, DistinctiveHigh, DistinctiveMedium, DistinctiveLow:
		return true
	}
	return false
}

// AttentionLevel grades the average consumer's level of attention.
type AttentionLevel string

const (
	AttentionHigh   AttentionLevel = "high"
	AttentionMedium AttentionLevel = "medium"
	AttentionLow    AttentionLevel = "low"
)

func (a AttentionLevel) IsValid() bool {
	return a == AttentionHigh || a == AttentionMedium || a == AttentionLow
}

// ConfusionType distinguishes direct from indirect likelihood of confusion.
type ConfusionType string

const (
	ConfusionDirect   ConfusionType = "direct"
	ConfusionIndirect ConfusionType = "indirect"
	ConfusionBoth     ConfusionType = "both"
)

func (c ConfusionType) IsValid() bool {
	return c == ConfusionDirect || c == ConfusionIndirect || c == ConfusionBoth
}

// OppositionOutcome records how the opposition was decided.
type OppositionOutcome string

const (
	OutcomeSuccessful          OppositionOutcome = "successful"
	OutcomePartiallySuccessful OppositionOutcome = "partially_successful"
	OutcomeUnsuccessful        OppositionOutcome = "unsuccessful"
)

func (o OppositionOutcome) IsValid() bool {
	return o == OutcomeSuccessful || o == OutcomePartiallySuccessful || o == OutcomeUnsuccessful
}

// OtherGround names additional statutory grounds beyond section 5(2).
type OtherGround string

const (
	GroundReputation OtherGround = "5(3)"
	GroundPassingOff OtherGround = "5(4)(a)"
)

func (g OtherGround) IsValid() bool {
	return g == GroundReputation || g == GroundPassingOff
}

// GoodsServices is the specification of goods or services for one Nice
// Classification class. The class number is 1..45.
type GoodsServices struct {
	Class int      `json:"class"`
	Terms []string `json:"terms"`
}

// ApplicantMark is a mark the applicant seeks to register.
type ApplicantMark struct {
	Mark          string          `json:"mark"`
	MarkType      MarkType        `json:"mark_type"`
	GoodsServices []GoodsServices `json:"goods_services"`
}

// OpponentMark is an earlier mark the opponent relies on. Most fields are
// optional because older decisions frequently omit registration details.
type OpponentMark struct {
	Mark               string          `json:"mark"`
	MarkType           *MarkType       `json:"mark_type"`
	RegistrationNumber *string         `json:"registration_number"`
	FilingDate         *string         `json:"filing_date"`
	RegistrationDate   *string         `json:"registration_date"`
	PriorityDate       *string         `json:"priority_date"`
	GoodsServices      []GoodsServices `json:"goods_services"`
}

// GoodsServicesComparison records the decision maker's assessment of one
// applicant/opponent term pair.
type GoodsServicesComparison struct {
	ApplicantTerm string           `json:"applicant_term"`
	OpponentTerm  string           `json:"opponent_term"`
	Similarity    SimilarityDegree `json:"similarity"`
}

// MarkComparison records the three-dimensional comparison of the marks.
type MarkComparison struct {
	VisualSimilarity     SimilarityDegree     `json:"visual_similarity"`
	AuralSimilarity      SimilarityDegree     `json:"aural_similarity"`
	ConceptualSimilarity ConceptualSimilarity `json:"conceptual_similarity"`
	DominantComponent    *string              `json:"dominant_component,omitempty"`
}

// Precedent is a prior case cited in the decision.
type Precedent struct {
	CaseName       string   `json:"case_name"`
	CaseReference  string   `json:"case_reference"`
	Summary        *string  `json:"summary,omitempty"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// DecisionRationale captures the reasoning behind the decision.
type DecisionRationale struct {
	KeyFactors      []string    `json:"key_factors"`
	PrecedentsCited []Precedent `json:"precedents_cited,omitempty"`
}

// Case is a structured representation of one trademark opposition decision.
// Field names mirror the wire format used for extraction and storage.
type Case struct {
	CaseReference           *string                   `json:"case_reference"`
	DecisionDate            *string                   `json:"decision_date"`
	DecisionMaker           *string                   `json:"decision_maker"`
	Jurisdiction            *Jurisdiction             `json:"jurisdiction,omitempty"`
	ApplicationNumber       string                    `json:"application_number"`
	ApplicantName           string                    `json:"applicant_name"`
	OpponentName            string                    `json:"opponent_name"`
	ApplicantMarks          []ApplicantMark           `json:"applicant_marks"`
	OpponentMarks           []OpponentMark            `json:"opponent_marks"`
	GroundsForOpposition    []string                  `json:"grounds_for_opposition"`
	ProofOfUseRequested     bool                      `json:"proof_of_use_requested"`
	ProofOfUseOutcome       *ProofOfUseOutcome        `json:"proof_of_use_outcome,omitempty"`
	GoodsServicesComparison []GoodsServicesComparison `json:"goods_services_comparison"`
	MarkComparison          MarkComparison            `json:"mark_comparison"`
	DistinctiveCharacter    DistinctiveCharacter      `json:"distinctive_character"`
	AverageConsumerAttn     AttentionLevel            `json:"average_consumer_attention"`
	LikelihoodOfConfusion   bool                      `json:"likelihood_of_confusion"`
	ConfusionType           *ConfusionType            `json:"confusion_type,omitempty"`
	OppositionOutcome       *OppositionOutcome        `json:"opposition_outcome,omitempty"`
	OtherGrounds            []OtherGround             `json:"other_grounds,omitempty"`
	DecisionRationale       *DecisionRationale        `json:"decision_rationale,omitempty"`
	GlobalAssessmentNotes   *string                   `json:"global_assessment_notes,omitempty"`
}

// Reference returns the case reference, or the empty string when the
// extraction could not recover one.
func (c *Case) Reference() string {
	if c.CaseReference == nil {
		return ""
	}
	return *c.CaseReference
}
