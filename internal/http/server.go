// Package http serves the analytics engine as a JSON API. Handlers load a
// fresh snapshot per computation, run the engine over it, and reply in
// {"data": ...} / {"error": ...} envelopes. A TTL response cache keyed by
// route and query sits in front; singleflight collapses concurrent misses
// for the same key.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"finpulse/internal/amqp"
	"finpulse/internal/cache"
	"finpulse/internal/config"
	"finpulse/internal/core"
	"finpulse/internal/currency"
	"finpulse/internal/log"
	"finpulse/internal/middleware/ratelimit"
	"finpulse/internal/middleware/security"
	"finpulse/internal/middleware/trace"
)

// SnapshotSource hands out the dataset the engine computes over. Every
// computation gets its own snapshot; handlers never share engine state.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (core.Snapshot, error)
}

// Pinger is implemented by sources that can verify their backing store.
// The readiness probe uses it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReportPublisher queues report requests for the export worker. A nil
// publisher disables POST /api/reports with a 503.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequest) error
}

// appMetrics tracks server-level counters exposed on /metrics.
type appMetrics struct {
	startedAt     time.Time
	cacheHits     int64
	cacheMisses   int64
	snapshotLoads int64
	reportsQueued int64
}

type Server struct {
	http.Server

	source          SnapshotSource
	converter       currency.Converter
	respCache       cache.Store
	publisher       ReportPublisher
	defaultCurrency string

	logger  *log.Logger
	flight  singleflight.Group
	metrics appMetrics

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires routes and the middleware chain, returning a server
// ready for ListenAndServe. The middleware order is trace (request id,
// start/complete logs), context logger, rate limit, security headers,
// probe rejection, mux.
func NewServer(cfg *config.Config, source SnapshotSource, conv currency.Converter, respCache cache.Store, publisher ReportPublisher, logger *log.Logger) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              ":" + cfg.Port,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		source:          source,
		converter:       conv,
		respCache:       respCache,
		publisher:       publisher,
		defaultCurrency: cfg.ReportingCurrency,
		logger:          logger.WithComponent(log.ComponentHTTP),
		detector:        security.NewDetector(),
		metrics:         appMetrics{startedAt: time.Now()},
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitRPM})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/analytics/categories", s.handleCategories)
	mux.HandleFunc("GET /api/analytics/goals", s.handleGoals)
	mux.HandleFunc("GET /api/analytics/bills", s.handleBills)
	mux.HandleFunc("GET /api/analytics/liabilities", s.handleLiabilities)
	mux.HandleFunc("GET /api/analytics/budgets", s.handleBudgets)
	mux.HandleFunc("GET /api/analytics/accounts/{id}", s.handleAccount)
	mux.HandleFunc("GET /api/analytics/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/analytics/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/analytics/health", s.handleHealth)
	mux.HandleFunc("POST /api/reports", s.handleCreateReport)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.rejectSuspicious(handler)
	handler = headers.Middleware(handler)
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(handler)
	handler = log.RequestIDMiddleware(requestIDFromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)
	s.Handler = handler

	return s
}

// rejectSuspicious drops requests matching known probe signatures before
// they reach the API.
func (s *Server) rejectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Rejected suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func requestIDFromRequest(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}

// Shutdown stops the rate limiter's background cleanup and then the
// listener. Safe to call more than once; later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
