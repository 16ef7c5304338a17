package upload

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civicsafe/civicsafe-api/internal/middleware"
	"github.com/civicsafe/civicsafe-api/internal/pkg/errorhandler"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
	"github.com/civicsafe/civicsafe-api/internal/pkg/storage"
)

// MaxUploadSize bounds the whole multipart body
const MaxUploadSize = 11 << 20

// Handler handles evidence upload requests
type Handler struct {
	service *Service
}

// NewHandler creates upload handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns upload routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/evidence", h.Evidence)
	return r
}

// Evidence handles POST /uploads/evidence
// Multipart form: file
func (h *Handler) Evidence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.ValidationError(w, map[string]string{"file": "This field is required"})
		return
	}
	defer file.Close()

	evidence, err := h.service.UploadEvidence(r.Context(), file, middleware.GetIdentity(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			response.ValidationError(w, map[string]string{"file": "File exceeds maximum size (10 MB)"})
		case errors.Is(err, storage.ErrInvalidMimeType):
			response.ValidationError(w, map[string]string{"file": "Must be a JPEG, PNG, WebP or GIF image"})
		case errors.Is(err, storage.ErrEmptyFile):
			response.ValidationError(w, map[string]string{"file": "File is empty"})
		case errors.Is(err, ErrUndecodableImage):
			response.ValidationError(w, map[string]string{"file": "Image could not be read"})
		default:
			errorhandler.Internal(r.Context(), w, err)
		}
		return
	}

	response.Created(w, evidence)
}
