package dashboard

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/middleware"
	"github.com/civicsafe/civicsafe-api/internal/pkg/errorhandler"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
)

// Handler serves the role home areas
type Handler struct {
	service *Service
}

// NewHandler creates new dashboard handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /dashboard and GET /user-dashboard.
// Area access is enforced upstream by the route guard; the service scopes the data.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		if errors.Is(err, report.ErrForbidden) {
			response.Unauthorized(w, "Authentication required")
			return
		}
		errorhandler.Internal(r.Context(), w, err)
		return
	}
	response.OK(w, summary)
}

// Routes returns dashboard routes, mounted at both home paths
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	return r
}
