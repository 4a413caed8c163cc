package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkIP-Intelligence/internal/application/prediction"
)

// Predictor runs case outcome predictions.
type Predictor interface {
	PredictCase(ctx context.Context, input prediction.CaseInput) (*prediction.CasePrediction, error)
}

type PredictionHandler struct {
	predictor Predictor
}

func NewPredictionHandler(predictor Predictor) *PredictionHandler {
	return &PredictionHandler{predictor: predictor}
}

// PredictCase handles POST /predictions/case.
func (h *PredictionHandler) PredictCase(c *gin.Context) {
	var input prediction.CaseInput
	if !bindJSON(c, &input) {
		return
	}
	result, err := h.predictor.PredictCase(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
