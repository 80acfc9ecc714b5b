package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// StatusResponse acknowledges an operation with no payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	store.Message
	Position *int   `json:"position,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	store.Comment
	Warning string `json:"warning,omitempty"`
}

// warningText returns the warning carried by err, if any.
func warningText(err error) string {
	var w *store.Warning
	if errors.As(err, &w) {
		return w.Message
	}
	return ""
}

// writeError maps domain and storage errors onto HTTP responses.
func writeError(c *gin.Context, logger *zerolog.Logger, err error) {
	var verr *core.ValidationError
	var perr *store.PersistenceError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message, Code: verr.Code(), Field: verr.Field})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found", Code: core.ErrCodeNotFound})
	case errors.Is(err, core.ErrAlreadyConfigured):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "celebration already configured", Code: core.ErrCodeAlreadyConfigured})
	case errors.As(err, &perr):
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("failed to persist document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to save, please try again", Code: core.ErrCodeStorage})
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
