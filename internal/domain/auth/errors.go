package auth

import (
	"errors"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
)

var (
	ErrEmailAlreadyExists = user.ErrEmailAlreadyExists
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role, must be ADMIN, MODERATOR or USER")
)
