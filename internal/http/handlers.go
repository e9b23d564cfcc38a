package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/amqp"
	"finpulse/internal/analytics"
	"finpulse/internal/log"
)

// errNotFound marks a lookup miss inside a compute closure so the shared
// path can answer 404 instead of 500.
var errNotFound = errors.New("not found")

// serveComputed is the shared read path: response cache first, then
// singleflight around snapshot load and engine compute, then cache fill.
// Only successful envelopes are cached; errors always recompute.
func (s *Server) serveComputed(w http.ResponseWriter, r *http.Request, compute func(e *analytics.Engine) (any, error)) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	ctx := r.Context()
	if body, ok := s.respCache.Get(ctx, key); ok {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		s.logger.DebugContext(ctx, "Response served from cache",
			log.FieldPath, r.URL.Path, log.FieldCacheHit, true)
		writeRaw(w, http.StatusOK, body)
		return
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)

	// The computation is shared across concurrent callers; the first
	// request's cancellation must not poison it for the others.
	bgCtx := context.WithoutCancel(ctx)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		snap, err := s.source.LoadSnapshot(bgCtx)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		atomic.AddInt64(&s.metrics.snapshotLoads, 1)

		payload, err := compute(analytics.New(snap, s.converter))
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(dataEnvelope{Data: payload})
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		s.respCache.Set(bgCtx, key, body)
		return body, nil
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.ErrorContext(ctx, "Analytics computation failed",
			log.FieldError, err, log.FieldPath, r.URL.Path)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeRaw(w, http.StatusOK, v.([]byte))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := parseRange(q, time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := analytics.CategoryFilter{AccountID: strings.TrimSpace(q.Get("accountId"))}
	if cur := strings.TrimSpace(q.Get("currency")); cur != "" {
		if len(cur) != 3 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid currency %q: want a 3-letter code", cur))
			return
		}
		filter.Currency = strings.ToUpper(cur)
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Categories(rng, filter), nil
	})
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	goalID := strings.TrimSpace(r.URL.Query().Get("goalId"))
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Goals(goalID), nil
	})
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Bills(rng), nil
	})
}

func (s *Server) handleLiabilities(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Liabilities(rng), nil
	})
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Budgets(rng), nil
	})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	rng, err := parseRange(r.URL.Query(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		summary := e.Account(accountID, rng)
		if summary == nil {
			return nil, fmt.Errorf("account %s: %w", accountID, errNotFound)
		}
		return summary, nil
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Calendar(rng), nil
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := parseRange(q, time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cur, err := parseCurrency(q, s.defaultCurrency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Dashboard(rng, cur), nil
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cur, err := parseCurrency(r.URL.Query(), s.defaultCurrency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveComputed(w, r, func(e *analytics.Engine) (any, error) {
		return e.Health(cur), nil
	})
}

// createReportRequest is the body of POST /api/reports. From and to are
// optional; omitting both leaves the window choice to the worker.
type createReportRequest struct {
	Kind     string `json:"kind"`
	Currency string `json:"currency"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// handleCreateReport queues a report run for the export worker and answers
// 202 with the run id the worker will log under.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		respondError(w, http.StatusServiceUnavailable, "report requests unavailable: no broker configured")
		return
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Kind {
	case amqp.KindDashboard, amqp.KindHealth:
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid report kind %q: want dashboard or health", req.Kind))
		return
	}

	cur := s.defaultCurrency
	if c := strings.TrimSpace(req.Currency); c != "" {
		if len(c) != 3 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid currency %q: want a 3-letter code", c))
			return
		}
		cur = strings.ToUpper(c)
	}

	if (req.From == "") != (req.To == "") {
		respondError(w, http.StatusBadRequest, "from and to must be provided together")
		return
	}
	var from, to time.Time
	if req.From != "" {
		var err error
		from, err = time.Parse(dateLayout, req.From)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid from date %q: want YYYY-MM-DD", req.From))
			return
		}
		t, err := time.Parse(dateLayout, req.To)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid to date %q: want YYYY-MM-DD", req.To))
			return
		}
		to = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		if from.After(to) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid range: from %s is after to %s", req.From, req.To))
			return
		}
	}

	msg := amqp.NewReportRequest(uuid.NewString(), req.Kind, cur, from, to)
	if err := s.publisher.PublishReportRequest(r.Context(), msg); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to queue report request",
			log.FieldError, err,
			log.FieldReportKind, req.Kind)
		respondError(w, http.StatusBadGateway, "failed to queue report request")
		return
	}

	atomic.AddInt64(&s.metrics.reportsQueued, 1)
	s.logger.InfoContext(r.Context(), "Report request queued",
		log.FieldRunID, msg.RunID,
		log.FieldReportKind, msg.Kind,
		log.FieldCurrency, msg.Currency)

	writeJSON(w, http.StatusAccepted, dataEnvelope{Data: map[string]any{
		"runId":    msg.RunID,
		"kind":     msg.Kind,
		"currency": msg.Currency,
		"status":   "queued",
	}})
}

// handleHealthz performs a basic liveness check.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startedAt).String(),
	})
}

// handleReadyz performs a readiness check with dependency verification.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if p, ok := s.source.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes server counters in plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	totalRequests, avgMicros := s.tracer.GetMetrics()
	rateMetrics := s.limiter.GetMetrics()
	secMetrics := s.detector.GetMetrics()

	cacheHits := atomic.LoadInt64(&s.metrics.cacheHits)
	cacheMisses := atomic.LoadInt64(&s.metrics.cacheMisses)
	snapshotLoads := atomic.LoadInt64(&s.metrics.snapshotLoads)
	uptime := time.Since(s.metrics.startedAt)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", totalRequests)

	fmt.Fprintf(w, "# HELP http_request_duration_micros_avg Average request duration in microseconds\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_micros_avg gauge\n")
	fmt.Fprintf(w, "http_request_duration_micros_avg %d\n\n", avgMicros)

	fmt.Fprintf(w, "# HELP response_cache_hits_total Total response cache hits\n")
	fmt.Fprintf(w, "# TYPE response_cache_hits_total counter\n")
	fmt.Fprintf(w, "response_cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP response_cache_misses_total Total response cache misses\n")
	fmt.Fprintf(w, "# TYPE response_cache_misses_total counter\n")
	fmt.Fprintf(w, "response_cache_misses_total %d\n\n", cacheMisses)

	fmt.Fprintf(w, "# HELP snapshot_loads_total Snapshots loaded for analytics computation\n")
	fmt.Fprintf(w, "# TYPE snapshot_loads_total counter\n")
	fmt.Fprintf(w, "snapshot_loads_total %d\n\n", snapshotLoads)

	fmt.Fprintf(w, "# HELP report_requests_queued_total Report requests queued for the worker\n")
	fmt.Fprintf(w, "# TYPE report_requests_queued_total counter\n")
	fmt.Fprintf(w, "report_requests_queued_total %d\n\n", atomic.LoadInt64(&s.metrics.reportsQueued))

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit rejections\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", secMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}
