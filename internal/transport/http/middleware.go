package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/auth"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/metrics"
)

const (
	// AdminCookieName holds the admin session ID for browser clients.
	AdminCookieName = "admin_session"
	// AdminHeaderName carries the admin session ID for API clients.
	AdminHeaderName = "X-Admin-Session"

	// ContextKeyVerifiedName is the context key for the name on a verification pass.
	ContextKeyVerifiedName = "verified_name"
)

// adminSessionID extracts the admin session ID from the header or cookie.
func adminSessionID(c *gin.Context) string {
	if id := c.GetHeader(AdminHeaderName); id != "" {
		return id
	}
	id, err := c.Cookie(AdminCookieName)
	if err != nil {
		return ""
	}
	return id
}

// AdminMiddleware rejects requests without an authorized admin session.
func AdminMiddleware(sessions *auth.Sessions, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessions.IsAuthorized(adminSessionID(c)) {
			logger.Debug().Str("path", c.Request.URL.Path).Msg("admin session required")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "admin login required", Code: core.ErrCodeUnauthorized})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PassMiddleware requires a valid verification pass as a bearer token.
func PassMiddleware(passes *auth.PassIssuer, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "verification required", Code: core.ErrCodeUnauthorized})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format", Code: core.ErrCodeUnauthorized})
			c.Abort()
			return
		}

		claims, err := passes.Validate(parts[1])
		if err != nil {
			logger.Debug().Err(err).Msg("invalid verification pass")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid verification pass", Code: core.ErrCodeUnauthorized})
			c.Abort()
			return
		}

		c.Set(ContextKeyVerifiedName, claims.Name)
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests and records request metrics.
func LoggerMiddleware(m *metrics.Metrics, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(latency.Seconds())

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Msg("http request")
	}
}
