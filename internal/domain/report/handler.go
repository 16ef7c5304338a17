package report

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/civicsafe/civicsafe-api/internal/middleware"
	"github.com/civicsafe/civicsafe-api/internal/pkg/errorhandler"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
)

// Handler handles report HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates report handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit creates a report; signed-in callers become its author
// POST /reports
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	report, err := h.service.SubmitReport(r.Context(), &req, middleware.GetIdentity(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, NewReportResponse(report))
}

// List returns the caller's visible reports
// GET /reports?status=&type=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			response.ValidationError(w, map[string]string{"limit": "Must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	reports, err := h.service.ListReports(r.Context(), middleware.GetIdentity(r.Context()), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.WithMeta(w, NewReportResponses(reports), response.Meta{Total: len(reports)})
}

// Stats returns counts by status
// GET /reports/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Stats(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, counts)
}

// Details is the public tracking lookup
// GET /reports/{reportId}/details
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetReportByTrackingID(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, view)
}

// UpdateStatus changes a report's status
// PATCH /reports/{reportId}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	report, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "reportId"), req.Status, middleware.GetIdentity(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, NewReportResponse(report))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		fields := FieldErrors(err)
		errorhandler.LogValidationError(r.Context(), fields)
		response.ValidationError(w, fields)
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "You are not allowed to perform this action")
	case errors.Is(err, ErrReportNotFound):
		response.NotFound(w, "Report not found")
	case errors.Is(err, ErrTransitionNotAllowed):
		response.Conflict(w, err.Error())
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}
