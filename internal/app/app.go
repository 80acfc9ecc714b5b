package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/auth"
	"github.com/vovakirdan/birthdaywall/internal/config"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/metrics"
	transporthttp "github.com/vovakirdan/birthdaywall/internal/transport/http"
)

// passIssuer names the issuer on verification passes.
const passIssuer = "birthdaywall"

// App wires together storage, core services and the HTTP transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	storage         *Storage
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	storage, err := OpenStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Admin.PasswordHash == "" && cfg.Admin.Password == config.DefaultAdminPassword {
		logger.Warn().Msg("admin password is the default, set admin.password before sharing the wall")
	}

	messages := core.NewMessageService(storage.Messages, core.MessageOptions{
		MaxPhotoBytes: cfg.Limits.MaxPhotoBytes,
	}, logger)
	celebration := core.NewCelebrationService(storage.Celebration, logger)

	svc := transporthttp.Services{
		Messages:    messages,
		Celebration: celebration,
		Gate:        core.NewGate(celebration),
		Sessions:    auth.NewSessions(auth.NewAuthenticator(cfg.Admin.Password, cfg.Admin.PasswordHash), cfg.Admin.SessionTTL),
		Passes: auth.NewPassIssuer(auth.PassConfig{
			Secret: []byte(cfg.Gate.Secret),
			Issuer: passIssuer,
			TTL:    cfg.Gate.PassTTL,
		}),
		Metrics: metrics.New(),
	}

	return &App{
		server:          transporthttp.NewServer(svc, cfg, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		storage:         storage,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes storage resources.
func (a *App) cleanup() {
	if err := a.storage.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
		return
	}
	a.log.Info().Msg("store closed")
}
