package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/auth"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/metrics"
)

// CelebrationHandlers provides HTTP handlers for celebration setup and the verification gate.
type CelebrationHandlers struct {
	celebration *core.CelebrationService
	gate        *core.Gate
	sessions    *auth.Sessions
	passes      *auth.PassIssuer
	metrics     *metrics.Metrics
	log         *zerolog.Logger
}

// NewCelebrationHandlers creates a new celebration handlers instance.
func NewCelebrationHandlers(celebration *core.CelebrationService, gate *core.Gate, sessions *auth.Sessions, passes *auth.PassIssuer, m *metrics.Metrics, logger *zerolog.Logger) *CelebrationHandlers {
	return &CelebrationHandlers{
		celebration: celebration,
		gate:        gate,
		sessions:    sessions,
		passes:      passes,
		metrics:     m,
		log:         logger,
	}
}

// CelebrationRequest carries a name/birthday pair for setup or verification.
type CelebrationRequest struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
}

// CelebrationStatusResponse reports whether setup has happened.
// The stored answers are never returned.
type CelebrationStatusResponse struct {
	Configured bool   `json:"configured"`
	Warning    string `json:"warning,omitempty"`
}

// VerifyResponse represents the verification result.
type VerifyResponse struct {
	Verified bool   `json:"verified"`
	Name     string `json:"name,omitempty"`
	Pass     string `json:"pass,omitempty"`
}

// Status handles the setup status query.
// GET /api/celebration
func (h *CelebrationHandlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, CelebrationStatusResponse{
		Configured: h.celebration.Load(c.Request.Context()).IsConfigured(),
	})
}

// Setup handles initial setup. Once configured, only an admin may overwrite in
// place; anyone else gets 409 and must reset first, since reset is ungated.
// PUT /api/celebration
func (h *CelebrationHandlers) Setup(c *gin.Context) {
	var req CelebrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid celebration request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeValidation})
		return
	}

	ctx := c.Request.Context()
	save := h.celebration.Setup
	if h.sessions.IsAuthorized(adminSessionID(c)) {
		save = h.celebration.Save
	}

	saved, err := save(ctx, req.Name, req.Birthday)
	if err != nil && warningText(err) == "" {
		writeError(c, h.log, err)
		return
	}

	h.log.Info().Msg("celebration configured")
	c.JSON(http.StatusOK, CelebrationStatusResponse{Configured: saved.IsConfigured(), Warning: warningText(err)})
}

// Reset handles clearing the celebration record.
// DELETE /api/celebration
func (h *CelebrationHandlers) Reset(c *gin.Context) {
	err := h.celebration.Reset(c.Request.Context())
	if err != nil && warningText(err) == "" {
		writeError(c, h.log, err)
		return
	}

	h.log.Info().Msg("celebration reset")
	c.JSON(http.StatusOK, CelebrationStatusResponse{Configured: false, Warning: warningText(err)})
}

// Verify handles the gate check and hands out a pass on success.
// POST /api/verify
func (h *CelebrationHandlers) Verify(c *gin.Context) {
	var req CelebrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid verify request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeValidation})
		return
	}

	ok := h.gate.Check(c.Request.Context(), req.Name, req.Birthday)
	h.metrics.Verifications.WithLabelValues(metrics.Result(ok)).Inc()
	if !ok {
		h.log.Debug().Msg("verification failed")
		c.JSON(http.StatusOK, VerifyResponse{Verified: false})
		return
	}

	resp := VerifyResponse{Verified: true, Name: req.Name}
	pass, err := h.passes.Issue(req.Name)
	switch {
	case err == nil:
		resp.Pass = pass
	case errors.Is(err, auth.ErrNoPassSecret):
		// Passes are optional when no secret is configured.
	default:
		writeError(c, h.log, err)
		return
	}

	h.log.Info().Msg("verification succeeded")
	c.JSON(http.StatusOK, resp)
}
