package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		target    string
		userAgent string
		want      bool
	}{
		{
			name:   "normal analytics request",
			method: http.MethodGet,
			target: "/api/analytics/dashboard?from=2025-06-01&to=2025-07-01",
			want:   false,
		},
		{
			name:   "path traversal",
			method: http.MethodGet,
			target: "/api/../../etc/passwd",
			want:   true,
		},
		{
			name:   "wordpress probe",
			method: http.MethodGet,
			target: "/wp-admin/setup.php",
			want:   true,
		},
		{
			name:   "sql injection in query",
			method: http.MethodGet,
			target: "/api/analytics/categories?currency=USD%20union%20select",
			want:   true,
		},
		{
			name:      "scanner user agent",
			method:    http.MethodGet,
			target:    "/api/analytics/health",
			userAgent: "sqlmap/1.7",
			want:      true,
		},
		{
			name:      "curl is a legitimate API client",
			method:    http.MethodGet,
			target:    "/api/analytics/health",
			userAgent: "curl/8.4.0",
			want:      false,
		},
		{
			name:   "trace method",
			method: "TRACE",
			target: "/api/analytics/bills",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.userAgent != "" {
				r.Header.Set("User-Agent", tt.userAgent)
			}
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequestCountsMetrics(t *testing.T) {
	d := NewDetector()
	r := httptest.NewRequest(http.MethodGet, "/wp-admin", nil)
	d.DetectSuspiciousRequest(r)
	d.DetectSuspiciousRequest(r)

	if got := d.GetMetrics().SuspiciousRequests; got != 2 {
		t.Errorf("SuspiciousRequests = %d, want 2", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.9:51234",
			want:       "203.0.113.9",
		},
		{
			name:       "forwarded for behind trusted proxy",
			remoteAddr: "127.0.0.1:8443",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"},
			want:       "198.51.100.7",
		},
		{
			name:       "real ip behind trusted proxy",
			remoteAddr: "10.0.0.5:9000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
		{
			name:       "forwarded header from untrusted source is ignored",
			remoteAddr: "203.0.113.9:51234",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7"},
			want:       "203.0.113.9",
		},
		{
			name:       "invalid forwarded value falls back to proxy ip",
			remoteAddr: "127.0.0.1:8443",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:       "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig())
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil))

	headers := rec.Header()
	if got := headers.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := headers.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := headers.Get("Content-Security-Policy"); got == "" {
		t.Error("Content-Security-Policy should be set")
	}
	// No HSTS over plain HTTP
	if got := headers.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q, want unset over HTTP", got)
	}
}
