package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns report routes. Submission and tracking lookup are public;
// listing, stats and status changes require a session.
func (h *Handler) Routes(authMiddleware, trackingLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Submit)
	r.With(trackingLimiter).Get("/{reportId}/details", h.Details)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Patch("/{reportId}", h.UpdateStatus)
	})

	return r
}
