// Package worker runs report exports. A ReportWorker serves two triggers:
// report requests consumed from the broker, and a periodic schedule that
// exports every known report kind for the current month.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finpulse/internal/amqp"
	"finpulse/internal/analytics"
	"finpulse/internal/core"
	"finpulse/internal/currency"
	"finpulse/internal/export"
	"finpulse/internal/log"
)

// SnapshotSource loads the data the analytics engine runs over.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (core.Snapshot, error)
}

// RequestConsumer delivers report requests from the broker until the
// context is cancelled.
type RequestConsumer interface {
	ConsumeReportRequests(ctx context.Context, handler func(*amqp.ReportRequest) error) error
}

// scheduledKinds are the reports every periodic run exports.
var scheduledKinds = []string{amqp.KindDashboard, amqp.KindHealth}

// ReportWorker computes reports from fresh snapshots and hands them to a
// ReportWriter. A nil consumer disables the broker trigger; the schedule
// keeps running, so the worker still functions without a broker.
type ReportWorker struct {
	source    SnapshotSource
	converter currency.Converter
	writer    export.ReportWriter
	consumer  RequestConsumer
	interval  time.Duration
	currency  string
	logger    *log.Logger
}

func NewReportWorker(source SnapshotSource, converter currency.Converter, writer export.ReportWriter, consumer RequestConsumer, interval time.Duration, reportingCurrency string, logger *log.Logger) *ReportWorker {
	return &ReportWorker{
		source:    source,
		converter: converter,
		writer:    writer,
		consumer:  consumer,
		interval:  interval,
		currency:  strings.ToUpper(reportingCurrency),
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled, driving the broker consumer and the
// periodic scheduler concurrently. A consumer failure stops the whole
// worker; cancellation is a clean shutdown.
func (w *ReportWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Report worker starting",
		"interval", w.interval.String(),
		log.FieldCurrency, w.currency)

	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeReportRequests(ctx, func(msg *amqp.ReportRequest) error {
				return w.HandleReportRequest(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.RunScheduled(ctx); err != nil {
					w.logger.ErrorContext(ctx, "Scheduled run failed", log.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	w.logger.Info("Report worker stopped")
	return nil
}

// HandleReportRequest runs one requested export. A returned error makes
// the broker requeue the message.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequest) error {
	w.logger.InfoContext(ctx, "Processing report request",
		log.FieldRunID, msg.RunID,
		log.FieldReportKind, msg.Kind)

	snap, err := w.source.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	engine := analytics.New(snap, w.converter)
	return w.runExport(ctx, engine, msg.RunID, msg.Kind, w.requestCurrency(msg.Currency), w.requestWindow(msg))
}

// RunScheduled exports every scheduled report kind for the current month.
// The snapshot is loaded once per run; per-kind failures are logged and
// the remaining kinds still export.
func (w *ReportWorker) RunScheduled(ctx context.Context) error {
	snap, err := w.source.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	engine := analytics.New(snap, w.converter)

	now := time.Now().UTC()
	window := core.MonthRange(now.Year(), now.Month())

	exported := 0
	failed := 0
	for _, kind := range scheduledKinds {
		runID := uuid.NewString()
		if err := w.runExport(ctx, engine, runID, kind, w.currency, window); err != nil {
			w.logger.ErrorContext(ctx, "Scheduled export failed",
				log.FieldError, err,
				log.FieldRunID, runID,
				log.FieldReportKind, kind)
			failed++
			continue
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Scheduled run completed",
		"exported", exported,
		"failed", failed)
	return nil
}

func (w *ReportWorker) runExport(ctx context.Context, engine *analytics.Engine, runID, kind, cur string, window core.Range) error {
	started := time.Now()

	report, err := export.BuildReport(engine, runID, kind, cur, window, started.UTC())
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	ref, err := w.writer.WriteReport(ctx, report)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	w.logger.InfoContext(ctx, "Report exported",
		log.FieldRunID, runID,
		log.FieldReportKind, kind,
		log.FieldCurrency, cur,
		log.FieldRows, len(report.Rows),
		"ref", ref,
		log.FieldDuration, time.Since(started).Milliseconds())
	return nil
}

// requestWindow derives the reporting window from the message, falling
// back to the current month when the request carries no bounds.
func (w *ReportWorker) requestWindow(msg *amqp.ReportRequest) core.Range {
	if msg.From.IsZero() || msg.To.IsZero() {
		now := time.Now().UTC()
		return core.MonthRange(now.Year(), now.Month())
	}
	return core.NewRange(msg.From, msg.To)
}

func (w *ReportWorker) requestCurrency(requested string) string {
	if requested == "" {
		return w.currency
	}
	return strings.ToUpper(requested)
}
