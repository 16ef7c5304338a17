package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/civicsafe/civicsafe-api/internal/config"
	"github.com/civicsafe/civicsafe-api/internal/domain/auth"
	"github.com/civicsafe/civicsafe-api/internal/domain/classification"
	"github.com/civicsafe/civicsafe-api/internal/domain/dashboard"
	"github.com/civicsafe/civicsafe-api/internal/domain/notification"
	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/domain/upload"
	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/middleware"
	"github.com/civicsafe/civicsafe-api/internal/pkg/jwt"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
)

type limiters struct {
	tracking *middleware.RateLimiter
	ai       *middleware.RateLimiter
	uploads  *middleware.RateLimiter
}

type routes struct {
	jwt       *jwt.Service
	auth      *auth.Handler
	reports   *report.Handler
	classify  *classification.Handler
	uploads   *upload.Handler
	tracking  *notification.Handler
	dashboard *dashboard.Handler
	limits    limiters

	// files serves locally stored evidence; nil for remote storage
	files http.Handler
	ping  func(ctx context.Context) error
}

func newRouter(cfg *config.Config, h routes) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.Session(h.jwt, cfg.SessionCookie))
	r.Use(middleware.RouteGuard)

	// WebSocket endpoint (before Compress)
	r.Route("/ws", func(r chi.Router) {
		r.Use(h.limits.tracking.Middleware)
		r.Mount("/", h.tracking.Routes())
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if h.ping != nil {
			status["database"] = "ok"
			if err := h.ping(r.Context()); err != nil {
				status["database"] = "unavailable"
			}
		}
		response.OK(w, status)
	})

	if h.files != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", h.files))
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
				response.OK(w, map[string]string{"message": "pong"})
			})

			r.Mount("/auth", h.auth.Routes(middleware.RequireAuth))
			r.Mount("/reports", h.reports.Routes(middleware.RequireAuth, h.limits.tracking.Middleware))
			r.Route("/ai", func(r chi.Router) {
				r.Use(h.limits.ai.Middleware)
				r.Mount("/", h.classify.Routes())
			})
			r.Route("/uploads", func(r chi.Router) {
				r.Use(h.limits.uploads.Middleware)
				r.Mount("/", h.uploads.Routes())
			})
		})

		r.Mount(user.AdminHomePath, dashboard.Routes(h.dashboard))
		r.Mount(user.UserHomePath, dashboard.Routes(h.dashboard))
	})

	return r
}
