package main

import (
	"context"
	"os"
	"time"

	"finpulse/internal/backend"
	"finpulse/internal/cli"
	"finpulse/internal/currency"
	"finpulse/internal/log"
	"finpulse/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting finpulse-worker",
		"interval", cfg.ReportInterval.String(),
		log.FieldCurrency, cfg.ReportingCurrency)

	b, err := backend.NewFactory(logger).Build(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to build backend", log.FieldError, err)
		os.Exit(1)
	}

	rates, _ := cfg.ParseExchangeRates()
	converter := currency.NewRateTable(rates)

	var consumer worker.RequestConsumer
	if b.AMQP != nil {
		consumer = b.AMQP
	} else {
		logger.Warn("No broker available; only scheduled exports will run")
	}

	w := worker.NewReportWorker(b.Store, converter, b.Writer, consumer,
		cfg.ReportInterval, cfg.ReportingCurrency, logger)

	ctx, _ := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Run an initial export before entering the loop.
	if err := w.RunScheduled(ctx); err != nil {
		logger.Error("Initial export failed", log.FieldError, err)
	}

	runErr := w.Run(ctx)

	if err := b.Cleanup(); err != nil {
		logger.Error("Backend cleanup error", log.FieldError, err)
	}
	if runErr != nil {
		logger.Error("Worker stopped with error", log.FieldError, runErr)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
