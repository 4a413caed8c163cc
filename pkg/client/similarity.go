package client

import "context"

// SimilarityClient calls the /api/v1/similarity endpoints.
type SimilarityClient struct {
	client *Client
}

type markPair struct {
	ApplicantMark string `json:"applicant_mark"`
	OpponentMark  string `json:"opponent_mark"`
}

// ScoredDegree is a similarity score with its banded degree.
type ScoredDegree struct {
	Score  float64 `json:"score"`
	Degree string  `json:"degree"`
}

// ConceptualAssessment is the model's conceptual comparison of two marks.
type ConceptualAssessment struct {
	Score     float64 `json:"score"`
	Degree    string  `json:"degree"`
	Reasoning string  `json:"reasoning"`
}

// MarkSimilarity is the combined visual, aural and conceptual assessment.
type MarkSimilarity struct {
	Visual          string  `json:"visual"`
	Aural           string  `json:"aural"`
	Conceptual      string  `json:"conceptual"`
	Overall         string  `json:"overall_similarity"`
	VisualScore     float64 `json:"visual_score"`
	AuralScore      float64 `json:"aural_score"`
	ConceptualScore float64 `json:"conceptual_score"`
	OverallScore    float64 `json:"overall_similarity_score"`
	Reasoning       string  `json:"reasoning"`
}

// GsTerm is one goods or services term with its Nice class.
type GsTerm struct {
	Term  string `json:"term"`
	Class int    `json:"class"`
}

// GsSimilarity compares one applicant term against one opponent term.
type GsSimilarity struct {
	ApplicantTerm         string  `json:"applicant_term"`
	OpponentTerm          string  `json:"opponent_term"`
	Similarity            string  `json:"similarity"`
	SimilarityScore       float64 `json:"similarity_score"`
	IsCompetitive         bool    `json:"is_competitive"`
	IsComplementary       bool    `json:"is_complementary"`
	LikelihoodOfConfusion bool    `json:"likelihood_of_confusion"`
	ConfusionType         *string `json:"confusion_type,omitempty"`
	Reasoning             string  `json:"reasoning"`
}

// Visual scores the edit-distance similarity of two marks.
func (s *SimilarityClient) Visual(ctx context.Context, applicantMark, opponentMark string) (*ScoredDegree, error) {
	var out ScoredDegree
	err := s.client.post(ctx, "/api/v1/similarity/visual", markPair{applicantMark, opponentMark}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Aural scores the phonetic similarity of two marks.
func (s *SimilarityClient) Aural(ctx context.Context, applicantMark, opponentMark string) (*ScoredDegree, error) {
	var out ScoredDegree
	err := s.client.post(ctx, "/api/v1/similarity/aural", markPair{applicantMark, opponentMark}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Conceptual asks the model to compare the meaning of two marks.
func (s *SimilarityClient) Conceptual(ctx context.Context, applicantMark, opponentMark string) (*ConceptualAssessment, error) {
	var out ConceptualAssessment
	err := s.client.post(ctx, "/api/v1/similarity/conceptual", markPair{applicantMark, opponentMark}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Marks runs the full three-dimensional mark comparison.
func (s *SimilarityClient) Marks(ctx context.Context, applicantMark, opponentMark string) (*MarkSimilarity, error) {
	var out MarkSimilarity
	err := s.client.post(ctx, "/api/v1/similarity/marks", markPair{applicantMark, opponentMark}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type gsRequest struct {
	ApplicantTerm GsTerm `json:"applicant_term"`
	OpponentTerm  GsTerm `json:"opponent_term"`
}

// GoodsServices compares one goods/services term pair.
func (s *SimilarityClient) GoodsServices(ctx context.Context, applicant, opponent GsTerm) (*GsSimilarity, error) {
	var out GsSimilarity
	err := s.client.post(ctx, "/api/v1/similarity/goods-services", gsRequest{applicant, opponent}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
