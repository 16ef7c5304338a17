package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/civicsafe/civicsafe-api/internal/config"
	"github.com/civicsafe/civicsafe-api/internal/domain/auth"
	"github.com/civicsafe/civicsafe-api/internal/domain/classification"
	"github.com/civicsafe/civicsafe-api/internal/domain/dashboard"
	"github.com/civicsafe/civicsafe-api/internal/domain/notification"
	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/domain/upload"
	"github.com/civicsafe/civicsafe-api/internal/middleware"
	"github.com/civicsafe/civicsafe-api/internal/pkg/imaging"
	"github.com/civicsafe/civicsafe-api/internal/pkg/jwt"
)

func testRouter(t *testing.T, ping func(context.Context) error) http.Handler {
	t.Helper()
	cfg := &config.Config{SessionCookie: "session"}
	jwtSvc := jwt.NewService("test-secret", time.Hour)
	reports := report.NewService(nil, nil)
	hub := notification.NewHub(nil)
	t.Cleanup(hub.Shutdown)

	return newRouter(cfg, routes{
		jwt:       jwtSvc,
		auth:      auth.NewHandler(auth.NewService(nil, jwtSvc), auth.CookieConfig{Name: "session"}),
		reports:   report.NewHandler(reports),
		classify:  classification.NewHandler(classification.NewService(nil, nil, 0, 0)),
		uploads:   upload.NewHandler(upload.NewService(nil, imaging.NewProcessor(imaging.DefaultConfig()))),
		tracking:  notification.NewHandler(hub, reports, nil),
		dashboard: dashboard.NewHandler(dashboard.NewService(reports)),
		limits: limiters{
			tracking: middleware.NewRateLimiter(nil, "tracking", 0, time.Minute),
			ai:       middleware.NewRateLimiter(nil, "ai", 0, time.Minute),
			uploads:  middleware.NewRateLimiter(nil, "uploads", 0, time.Minute),
		},
		ping: ping,
	})
}

func TestHealthReportsDatabase(t *testing.T) {
	down := testRouter(t, func(context.Context) error { return errors.New("connection refused") })

	rr := httptest.NewRecorder()
	down.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"database":"unavailable"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestGuardedAreasRedirectAnonymous(t *testing.T) {
	router := testRouter(t, nil)

	for _, path := range []string{"/dashboard", "/user-dashboard"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", path, rr.Code)
		}
		if !strings.HasPrefix(rr.Header().Get("Location"), "/auth/signin?callbackUrl=") {
			t.Fatalf("%s: unexpected redirect %q", path, rr.Header().Get("Location"))
		}
	}
}

func TestReportListingRequiresSession(t *testing.T) {
	router := testRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestClassifyFallsBackWithoutUpstream(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/classify", strings.NewReader(`{"description":"Water main burst on 5th street"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var env struct {
		Data classification.ClassifyResponse `json:"data"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	if !env.Data.Fallback || env.Data.Department != classification.DepartmentOther {
		t.Fatalf("expected fallback to %s, got %+v", classification.DepartmentOther, env.Data)
	}
}

func TestNewUpstream(t *testing.T) {
	ctx := context.Background()

	up, err := newUpstream(ctx, &config.Config{ClassifierProvider: "openrouter"})
	if err != nil || up != nil {
		t.Fatalf("missing key must disable upstream, got %v, %v", up, err)
	}

	up, err = newUpstream(ctx, &config.Config{ClassifierProvider: "openrouter", OpenRouterAPIKey: "k", OpenRouterModel: "m"})
	if err != nil || up == nil || up.Name() != "openrouter" {
		t.Fatalf("expected openrouter upstream, got %v, %v", up, err)
	}

	up, err = newUpstream(ctx, &config.Config{ClassifierProvider: "gemini"})
	if err != nil || up != nil {
		t.Fatalf("missing gemini key must disable upstream, got %v, %v", up, err)
	}

	if _, err := newUpstream(ctx, &config.Config{ClassifierProvider: "watson"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
