// Package cli provides the initialization shared by cmd/finpulse,
// cmd/finpulse-worker and cmd/finpulse-report.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finpulse/internal/config"
	"finpulse/internal/log"
	"finpulse/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// ParseLogLevel maps a configured level name to a slog level, defaulting
// to info for anything unrecognized.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger builds the process logger at the given level and installs
// it as the slog default.
func SetupLogger(level, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     ParseLogLevel(level),
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// Bootstrap loads the env file and configuration, builds the logger at
// the configured level, and validates. Validation failures exit the
// process.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore opens the configured storage backend or exits the process.
func OpenStore(cfg *config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage",
			log.FieldError, err,
			log.FieldDriver, cfg.StorageDriver)
		os.Exit(1)
	}
	return store
}

// GracefulShutdown installs signal handling. The returned context is
// cancelled on SIGINT or SIGTERM; cleanup then runs with timeout as its
// budget, and done closes when it finishes.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		if cleanup != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
			defer shutdownCancel()
			cleanup(shutdownCtx)
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and the shutdown
// routine has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
