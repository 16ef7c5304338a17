package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
)

// RegisterRequest for POST /auth/register. Self-registration always creates a USER.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"max=100"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateAccountInput is used by operators to provision accounts with any role
type CreateAccountInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"max=100"`
	Role     string `json:"role" validate:"required,oneof=ADMIN MODERATOR USER"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      user.Role `json:"role"`
	HomePath  string    `json:"home_path"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse returned after login/register
type AuthResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewAccountResponse maps the entity to its API shape
func NewAccountResponse(a *user.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role,
		HomePath:  user.HomePath(a.Role),
		CreatedAt: a.CreatedAt,
	}
}
