package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
)

// SignInPath is where unauthenticated visitors of guarded areas are sent
const SignInPath = "/auth/signin"

// GuardDecision is the outcome of evaluating a path for a caller
type GuardDecision struct {
	Allow    bool
	Redirect string
}

// Decide applies the role/area rules. It is pure so the rules can be tested
// without HTTP plumbing.
func Decide(path string, id *user.Identity) GuardDecision {
	adminArea := underPath(path, user.AdminHomePath)
	userArea := underPath(path, user.UserHomePath)
	if !adminArea && !userArea {
		return GuardDecision{Allow: true}
	}

	if id == nil || !id.Role.IsValid() {
		return GuardDecision{Redirect: SignInPath + "?callbackUrl=" + url.QueryEscape(path)}
	}

	privileged := user.CanViewAll(id.Role)
	switch {
	case adminArea && !privileged:
		return GuardDecision{Redirect: user.UserHomePath}
	case userArea && privileged:
		return GuardDecision{Redirect: user.AdminHomePath}
	}
	return GuardDecision{Allow: true}
}

// RouteGuard keeps each role on its own home area. It must run after Session.
// Every outcome is either pass-through or a 302; it never writes an error status.
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := Decide(r.URL.Path, GetIdentity(r.Context()))
		if !d.Allow {
			http.Redirect(w, r, d.Redirect, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// underPath matches prefix on segment boundaries: /dashboard and /dashboard/x, not /dashboards
func underPath(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
