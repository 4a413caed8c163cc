package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkIP-Intelligence/internal/application/prediction"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// SimilarityService is the slice of the prediction service the similarity
// endpoints need.
type SimilarityService interface {
	Visual(applicantMark, opponentMark string) (float64, caselaw.SimilarityDegree)
	Aural(applicantMark, opponentMark string) (float64, caselaw.SimilarityDegree)
	Conceptual(ctx context.Context, applicantMark, opponentMark string) (*prediction.ConceptualResult, error)
	Marks(ctx context.Context, applicantMark, opponentMark string) (*prediction.MarkSimilarity, error)
	GoodsServices(ctx context.Context, applicant, opponent prediction.GsTerm) (*prediction.GsSimilarity, error)
}

type SimilarityHandler struct {
	service SimilarityService
}

func NewSimilarityHandler(service SimilarityService) *SimilarityHandler {
	return &SimilarityHandler{service: service}
}

type markPairRequest struct {
	ApplicantMark string `json:"applicant_mark"`
	OpponentMark  string `json:"opponent_mark"`
}

func (r markPairRequest) validate() error {
	if r.ApplicantMark == "" || r.OpponentMark == "" {
		return apperrors.New(apperrors.ErrCodeBadRequest, "applicant_mark and opponent_mark are required")
	}
	return nil
}

type scoredDegreeResponse struct {
	Score  float64                  `json:"score"`
	Degree caselaw.SimilarityDegree `json:"degree"`
}

// Visual handles POST /similarity/visual.
func (h *SimilarityHandler) Visual(c *gin.Context) {
	var req markPairRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	score, degree := h.service.Visual(req.ApplicantMark, req.OpponentMark)
	c.JSON(http.StatusOK, scoredDegreeResponse{Score: score, Degree: degree})
}

// Aural handles POST /similarity/aural.
func (h *SimilarityHandler) Aural(c *gin.Context) {
	var req markPairRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	score, degree := h.service.Aural(req.ApplicantMark, req.OpponentMark)
	c.JSON(http.StatusOK, scoredDegreeResponse{Score: score, Degree: degree})
}

// Conceptual handles POST /similarity/conceptual.
func (h *SimilarityHandler) Conceptual(c *gin.Context) {
	var req markPairRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.service.Conceptual(c.Request.Context(), req.ApplicantMark, req.OpponentMark)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Marks handles POST /similarity/marks.
func (h *SimilarityHandler) Marks(c *gin.Context) {
	var req markPairRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.service.Marks(c.Request.Context(), req.ApplicantMark, req.OpponentMark)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type gsRequest struct {
	ApplicantTerm prediction.GsTerm `json:"applicant_term"`
	OpponentTerm  prediction.GsTerm `json:"opponent_term"`
}

// GoodsServices handles POST /similarity/goods-services.
func (h *SimilarityHandler) GoodsServices(c *gin.Context) {
	var req gsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.GoodsServices(c.Request.Context(), req.ApplicantTerm, req.OpponentTerm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
