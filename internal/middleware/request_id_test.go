package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDPropagatesIncomingHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "abc-123" {
		t.Fatalf("expected request id in context, got %q", seen)
	}
	if rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected request id echoed, got %q", rr.Header().Get("X-Request-ID"))
	}
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	rr := httptest.NewRecorder()
	RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if len(rr.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected generated uuid, got %q", rr.Header().Get("X-Request-ID"))
	}
}

func TestRateLimiterWithoutRedisAllows(t *testing.T) {
	rl := NewRateLimiter(nil, "tracking", 1, 0)
	for i := 0; i < 3; i++ {
		if !rl.Allow(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "1.2.3.4") {
			t.Fatal("limiter without redis must fail open")
		}
	}
}
