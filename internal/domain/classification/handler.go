package classification

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
	"github.com/civicsafe/civicsafe-api/internal/pkg/validator"
)

// ClassifyRequest is the body of POST /ai/classify
type ClassifyRequest struct {
	Description string `json:"description" validate:"required,notblank,max=5000"`
}

// ClassifyResponse always carries a department; Error is set on fallback
type ClassifyResponse struct {
	Department string `json:"department"`
	Fallback   bool   `json:"fallback"`
	Error      string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
}

// AnalyzeImageRequest carries a base64 image or a data URL
type AnalyzeImageRequest struct {
	Image string `json:"image" validate:"required,notblank"`
}

// AnalyzeImageResponse is the draft report; Error is set on fallback
type AnalyzeImageResponse struct {
	Title       string `json:"title"`
	ReportType  string `json:"reportType"`
	Description string `json:"description"`
	Fallback    bool   `json:"fallback"`
	Error       string `json:"error,omitempty"`
}

// Handler exposes the collaborator over HTTP
type Handler struct {
	service *Service
}

// NewHandler creates classification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns classification routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/classify", h.Classify)
	r.Post("/analyze-image", h.AnalyzeImage)
	return r
}

// Classify suggests a department for a description
// POST /ai/classify
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result := h.service.Classify(r.Context(), req.Description)

	resp := ClassifyResponse{Department: result.Department, Fallback: result.Fallback}
	if result.Fallback {
		resp.Error = "Classification failed"
		resp.Details = result.Reason
	}
	response.OK(w, resp)
}

// AnalyzeImage drafts a report from an image
// POST /ai/analyze-image
func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeImageRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil || len(image) == 0 {
		response.ValidationError(w, map[string]string{"image": "Must be a base64 image or data URL"})
		return
	}

	analysis := h.service.AnalyzeImage(r.Context(), image)

	resp := AnalyzeImageResponse{
		Title:       analysis.Title,
		ReportType:  analysis.Type,
		Description: analysis.Description,
		Fallback:    analysis.Fallback,
	}
	if analysis.Fallback {
		resp.Error = "Failed to analyze image"
	}
	response.OK(w, resp)
}

// decodeImage accepts "data:image/png;base64,...." or bare base64
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
