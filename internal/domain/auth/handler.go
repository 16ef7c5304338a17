package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/civicsafe/civicsafe-api/internal/middleware"
	"github.com/civicsafe/civicsafe-api/internal/pkg/errorhandler"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
	"github.com/civicsafe/civicsafe-api/internal/pkg/validator"
)

// CookieConfig controls the session cookie written on login
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
	cookie  CookieConfig
}

// NewHandler creates auth handler
func NewHandler(service *Service, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &Handler{service: service, cookie: cookie}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Conflict(w, "Email already registered")
		default:
			errorhandler.Internal(r.Context(), w, err)
		}
		return
	}

	h.setSession(w, result)
	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			logger.LogWarn(r.Context(), "Login failed", "email", NormalizeEmail(req.Email))
			response.Unauthorized(w, "Invalid email or password")
		default:
			errorhandler.Internal(r.Context(), w, err)
		}
		return
	}

	h.setSession(w, result)
	response.OK(w, result)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	response.OK(w, map[string]string{"message": "Logged out successfully"})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	account, err := h.service.GetCurrentAccount(r.Context(), identity.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			errorhandler.Internal(r.Context(), w, err)
		}
		return
	}

	response.OK(w, account)
}

func (h *Handler) setSession(w http.ResponseWriter, result *AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
