package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimit{RequestsPerSecond: 1, Burst: 1}, nil)
	rejected := 0
	limiter.OnReject(func(string) { rejected++ })
	handler := limiter.Middleware("profiles")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/tip1abc", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d", res.Code)
	}
	if res.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if rejected != 1 {
		t.Fatalf("expected one rejection callback, got %d", rejected)
	}
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	limiter := NewRateLimiter(RateLimit{RequestsPerSecond: 1, Burst: 1}, nil)
	handler := limiter.Middleware("vaults")(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/vaults/tip1abc", nil)
		req.Header.Set("X-Forwarded-For", ip+", 192.168.1.1")
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("client %s: expected 200, got %d", ip, res.Code)
		}
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(RateLimit{RequestsPerSecond: 1, Burst: 1}, nil)
	now := time.Unix(1_700_000_000, 0)
	limiter.clockNow = func() time.Time { return now }
	limiter.allow("10.0.0.1")

	if removed := limiter.Sweep(); removed != 0 {
		t.Fatalf("fresh client evicted")
	}
	now = now.Add(10 * time.Minute)
	if removed := limiter.Sweep(); removed != 1 {
		t.Fatalf("expected idle client eviction, removed %d", removed)
	}
}

func TestClientIDPrefersRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "172.16.0.9:5555"
	if id := clientID(req); id != "172.16.0.9" {
		t.Fatalf("unexpected remote id %q", id)
	}
	req.Header.Set("X-Real-IP", "203.0.113.7")
	if id := clientID(req); id != "203.0.113.7" {
		t.Fatalf("unexpected real ip id %q", id)
	}
}

func TestObservabilityCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewObservability(ObservabilityConfig{}, reg, nil)
	handler := obs.Middleware("healthz")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	expected := `
# HELP tipledger_http_requests_total Total HTTP requests processed by the ops surface.
# TYPE tipledger_http_requests_total counter
tipledger_http_requests_total{method="GET",route="healthz",status="418"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "tipledger_http_requests_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}
