package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/birthdaywall/internal/app"
	"github.com/vovakirdan/birthdaywall/internal/config"
	"github.com/vovakirdan/birthdaywall/internal/log"
)

var (
	configPath string
	addr       string
	logLevel   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "birthdaywall",
	Short: "Birthday message wall backend",
	Long: `birthdaywall serves a shared birthday message wall.

Guests post messages, like and comment on them. A small verification
gate unlocks the wall for the person being celebrated, and an admin
password guards deletion.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	serveCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")

	rootCmd.AddCommand(serveCmd, celebrationCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration and builds the logger it asks for.
// A .env file in the working directory, if present, seeds the environment.
func loadConfig() (*config.Config, *zerolog.Logger, error) {
	_ = godotenv.Load(".env")
	bootstrap := log.New("info", "console")

	cfg, resolved, err := config.Load(bootstrap, configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.UpdateFrom(config.Config{Addr: addr, LogLevel: logLevel})

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config", resolved).Msg("configuration loaded")
	return &cfg, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting birthdaywall server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
