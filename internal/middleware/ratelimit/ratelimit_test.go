package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(rpm int) *Limiter {
	rl := NewLimiter(Config{RequestsPerMinute: rpm, CleanupInterval: time.Hour})
	return rl
}

func TestAllowWithinLimit(t *testing.T) {
	rl := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.1.1.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.1.1.1") {
		t.Error("fourth request should be rejected")
	}

	// Other clients have their own window
	if !rl.Allow("10.1.1.2") {
		t.Error("different client should be allowed")
	}

	metrics := rl.GetMetrics()
	if metrics.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1", metrics.TotalHits)
	}
	if metrics.ClientCount != 2 {
		t.Errorf("ClientCount = %d, want 2", metrics.ClientCount)
	}
}

func TestAllowResetsAfterWindow(t *testing.T) {
	rl := newTestLimiter(1)
	defer rl.Stop()

	if !rl.Allow("10.2.2.2") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("10.2.2.2") {
		t.Fatal("second request in the same window should be rejected")
	}

	rl.mu.Lock()
	rl.clients["10.2.2.2"].windowStart = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	if !rl.Allow("10.2.2.2") {
		t.Error("request after the window expired should be allowed")
	}
}

func TestCleanupRemovesStaleEntries(t *testing.T) {
	rl := newTestLimiter(10)
	defer rl.Stop()

	rl.Allow("10.3.3.3")
	rl.Allow("10.3.3.4")

	rl.mu.Lock()
	rl.clients["10.3.3.3"].windowStart = time.Now().Add(-11 * time.Minute)
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d after cleanup, want 1", got)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	rl := newTestLimiter(1)
	defer rl.Stop()

	handler := rl.Middleware(
		func(*http.Request) string { return "10.4.4.4" },
		nil,
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil))
	if first.Code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", second.Header().Get("Retry-After"))
	}
}
