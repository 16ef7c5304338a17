package user

import (
	"time"

	"github.com/google/uuid"
)

// Role governs what an account may read and change
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
)

const (
	// AdminHomePath is the admin-scoped area
	AdminHomePath = "/dashboard"
	// UserHomePath is the user-scoped area
	UserHomePath = "/user-dashboard"
)

// Account represents an authenticated identity (matches accounts table)
type Account struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Identity is the decoded caller of an operation. A nil *Identity is an anonymous caller.
type Identity struct {
	AccountID uuid.UUID
	Role      Role
}

// Identity returns the caller identity for this account
func (a *Account) Identity() *Identity {
	return &Identity{AccountID: a.ID, Role: a.Role}
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// ParseRole parses a role name; unknown names return false
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// CanTransitionStatus reports whether the role may change a report's status
func CanTransitionStatus(r Role) bool {
	return r == RoleAdmin || r == RoleModerator
}

// CanViewAll reports whether the role sees every report rather than only its own
func CanViewAll(r Role) bool {
	return r == RoleAdmin || r == RoleModerator
}

// HomePath returns the role-appropriate landing area
func HomePath(r Role) string {
	if CanViewAll(r) {
		return AdminHomePath
	}
	return UserHomePath
}

// RoleOf returns the caller's role, or "" for anonymous callers
func RoleOf(id *Identity) Role {
	if id == nil {
		return ""
	}
	return id.Role
}
