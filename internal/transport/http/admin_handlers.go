package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/auth"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/metrics"
)

// AdminHandlers provides HTTP handlers for the admin session.
type AdminHandlers struct {
	sessions *auth.Sessions
	metrics  *metrics.Metrics
	log      *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance.
func NewAdminHandlers(sessions *auth.Sessions, m *metrics.Metrics, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		sessions: sessions,
		metrics:  m,
		log:      logger,
	}
}

// LoginRequest represents the admin login request body.
type LoginRequest struct {
	Password string `json:"password"`
}

// SessionResponse represents the admin session state.
type SessionResponse struct {
	Authorized bool   `json:"authorized"`
	Session    string `json:"session,omitempty"`
}

// Login handles admin login.
// POST /api/admin/login
func (h *AdminHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeValidation})
		return
	}

	id, ok, err := h.sessions.Login(req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.metrics.AdminLogins.WithLabelValues(metrics.Result(ok)).Inc()
	if !ok {
		h.log.Info().Msg("admin login rejected")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "incorrect password", Code: core.ErrCodeUnauthorized})
		return
	}

	c.SetCookie(
		AdminCookieName,
		id,
		0, // session cookie
		"/",
		"",
		false, // secure (set to true in production with HTTPS)
		true,  // httpOnly
	)

	h.log.Info().Msg("admin access granted")
	c.JSON(http.StatusOK, SessionResponse{Authorized: true, Session: id})
}

// Logout handles admin logout.
// POST /api/admin/logout
func (h *AdminHandlers) Logout(c *gin.Context) {
	if id := adminSessionID(c); id != "" {
		h.sessions.Logout(id)
	}
	c.SetCookie(AdminCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, SessionResponse{Authorized: false})
}

// Session reports whether the caller holds an authorized admin session.
// GET /api/admin/session
func (h *AdminHandlers) Session(c *gin.Context) {
	c.JSON(http.StatusOK, SessionResponse{Authorized: h.sessions.IsAuthorized(adminSessionID(c))})
}
