package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/jwt"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
)

type contextKey string

const identityKey contextKey = "identity"

// Session decodes the caller's session, if any, from the Authorization header
// or the session cookie. Missing or invalid sessions leave the request anonymous;
// it never rejects a request.
func Session(jwtService *jwt.Service, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtService.ValidateSessionToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			role, ok := user.ParseRole(claims.Role)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), &user.Identity{AccountID: claims.AccountID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous callers with 401
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()) == nil {
			response.Unauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity attaches the caller identity to ctx
func WithIdentity(ctx context.Context, id *user.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity extracts the caller identity from context; nil means anonymous
func GetIdentity(ctx context.Context) *user.Identity {
	if id, ok := ctx.Value(identityKey).(*user.Identity); ok {
		return id
	}
	return nil
}

func sessionToken(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
