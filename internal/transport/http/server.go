package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/auth"
	"github.com/vovakirdan/birthdaywall/internal/config"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/metrics"
)

// Services bundles the components the HTTP layer drives.
type Services struct {
	Messages    *core.MessageService
	Celebration *core.CelebrationService
	Gate        *core.Gate
	Sessions    *auth.Sessions
	Passes      *auth.PassIssuer
	Metrics     *metrics.Metrics
}

// NewServer builds the HTTP server with all API routes.
func NewServer(svc Services, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(svc, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine.
func NewRouter(svc Services, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// Without trusted proxies gin reads the client IP from the peer address only.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("invalid trusted proxies, ignoring forwarded headers")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(svc.Metrics, logger))

	router.GET("/health", healthHandler)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(svc.Metrics.Handler()))
	}

	messages := NewMessageHandlers(svc.Messages, svc.Metrics, cfg, logger)
	celebration := NewCelebrationHandlers(svc.Celebration, svc.Gate, svc.Sessions, svc.Passes, svc.Metrics, logger)
	admin := NewAdminHandlers(svc.Sessions, svc.Metrics, logger)

	api := router.Group("/api")
	api.GET("/relationships", messages.Relationships)
	api.GET("/storage", messages.Storage)

	// Reading the wall may need a verification pass; posting never does.
	read := api.Group("")
	if cfg.Gate.RequirePass {
		read.Use(PassMiddleware(svc.Passes, logger))
	}
	read.GET("/messages", messages.List)
	read.GET("/messages/recent", messages.Recent)
	read.GET("/stats", messages.Stats)

	write := api.Group("")
	write.Use(RateLimitMiddleware(cfg.Limits.PostsPerMinute, cfg.Limits.PostBurst, svc.Metrics, logger))
	write.POST("/messages", messages.Create)
	write.POST("/messages/:id/like", messages.Like)
	write.POST("/messages/:id/comments", messages.AddComment)
	write.POST("/positions/:index/like", messages.Like)
	write.POST("/positions/:index/comments", messages.AddComment)

	gated := api.Group("")
	gated.Use(AdminMiddleware(svc.Sessions, logger))
	gated.DELETE("/messages", messages.ClearAll)
	gated.DELETE("/messages/:id", messages.Delete)
	gated.DELETE("/positions/:index", messages.Delete)

	api.GET("/celebration", celebration.Status)
	api.PUT("/celebration", celebration.Setup)
	api.DELETE("/celebration", celebration.Reset)
	api.POST("/verify", celebration.Verify)

	api.POST("/admin/login", admin.Login)
	api.POST("/admin/logout", admin.Logout)
	api.GET("/admin/session", admin.Session)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
