package client

import "context"

// PredictionsClient calls the /api/v1/predictions endpoints.
type PredictionsClient struct {
	client *Client
}

// GoodsServicesSpec lists the terms covered in one Nice class.
type GoodsServicesSpec struct {
	Class int      `json:"class"`
	Terms []string `json:"terms"`
}

// ApplicantMark is a mark the applicant seeks to register.
type ApplicantMark struct {
	Mark          string              `json:"mark"`
	MarkType      string              `json:"mark_type"`
	GoodsServices []GoodsServicesSpec `json:"goods_services"`
}

// OpponentMark is an earlier mark the opponent relies on. Registration
// details are optional.
type OpponentMark struct {
	Mark               string              `json:"mark"`
	MarkType           *string             `json:"mark_type"`
	RegistrationNumber *string             `json:"registration_number"`
	FilingDate         *string             `json:"filing_date"`
	RegistrationDate   *string             `json:"registration_date"`
	PriorityDate       *string             `json:"priority_date"`
	GoodsServices      []GoodsServicesSpec `json:"goods_services"`
}

// CaseInput describes the hypothetical opposition to predict.
type CaseInput struct {
	ApplicantMarks []ApplicantMark `json:"applicant_marks"`
	OpponentMarks  []OpponentMark  `json:"opponent_marks"`
}

// CasePrediction is the predicted outcome with its supporting assessments.
type CasePrediction struct {
	PredictedOutcome string         `json:"predicted_outcome"`
	ConfidenceScore  float64        `json:"confidence_score"`
	Reasoning        string         `json:"detailed_reasoning"`
	MarkSimilarity   MarkSimilarity `json:"mark_similarity_assessment"`
	GoodsServices    []GsSimilarity `json:"goods_services_assessments"`
}

// PredictCase predicts the outcome of an opposition between the given
// marks.
func (p *PredictionsClient) PredictCase(ctx context.Context, input CaseInput) (*CasePrediction, error) {
	var out CasePrediction
	if err := p.client.post(ctx, "/api/v1/predictions/case", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
