package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/nfrund/topictracker/internal/middleware"
)

// ListResponse wraps a collection of topics.
type ListResponse struct {
	Success bool            `json:"success"`
	Data    []*domain.Topic `json:"data"`
	Count   int             `json:"count"`
}

// DataResponse wraps a single result with an optional message.
type DataResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is a success without a body.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Details []domain.Violation `json:"details,omitempty"`
}

// respondError maps service errors to HTTP responses. Anything that is not a
// validation or not-found error is logged and reported as failure.
func respondError(c echo.Context, err error, failure string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: verr.Violations,
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Topic not found"})
	default:
		middleware.FromContext(c.Request().Context()).Error(failure, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: failure})
	}
}
