package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"finpulse/internal/backend"
	"finpulse/internal/cli"
	"finpulse/internal/currency"
	apphttp "finpulse/internal/http"
	"finpulse/internal/log"
)

func main() {
	seedDemo := flag.Bool("seed-demo", false, "insert the demo dataset before serving")
	flag.Parse()

	cfg, logger := cli.Bootstrap(log.ComponentApp)
	logger.Info("Starting finpulse",
		"port", cfg.Port,
		log.FieldDriver, cfg.StorageDriver,
		log.FieldCacheBackend, cfg.CacheBackend)

	b, err := backend.NewFactory(logger).Build(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to build backend", log.FieldError, err)
		os.Exit(1)
	}

	if *seedDemo {
		if err := b.Store.SeedDemo(context.Background()); err != nil {
			logger.Error("Failed to seed demo data", log.FieldError, err)
			b.Cleanup()
			os.Exit(1)
		}
		logger.Info("Demo dataset seeded")
	}

	rates, _ := cfg.ParseExchangeRates()
	converter := currency.NewRateTable(rates)

	var publisher apphttp.ReportPublisher
	if b.AMQP != nil {
		publisher = b.AMQP
	}
	srv := apphttp.NewServer(cfg, b.Store, converter, b.Cache, publisher, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := b.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
