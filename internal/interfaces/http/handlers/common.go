// Package handlers implements the HTTP endpoints: similarity assessment,
// case prediction, case lookup, ingestion enqueueing and health probes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// errorResponse is the standard error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps application errors to HTTP statuses. Internal errors
// are masked; everything else surfaces its code and message.
func respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, errorResponse{Code: string(code), Message: message})
}

// bindJSON decodes the request body, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    string(apperrors.ErrCodeBadRequest),
			Message: "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}
