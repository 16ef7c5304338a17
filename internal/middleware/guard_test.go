package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
)

func TestRouteGuard(t *testing.T) {
	admin := &user.Identity{AccountID: uuid.New(), Role: user.RoleAdmin}
	moderator := &user.Identity{AccountID: uuid.New(), Role: user.RoleModerator}
	citizen := &user.Identity{AccountID: uuid.New(), Role: user.RoleUser}

	cases := []struct {
		name     string
		path     string
		caller   *user.Identity
		wantCode int
		wantLoc  string
	}{
		{"anonymous admin area", "/dashboard", nil, http.StatusFound, "/auth/signin?callbackUrl=%2Fdashboard"},
		{"anonymous user area", "/user-dashboard/reports", nil, http.StatusFound, "/auth/signin?callbackUrl=%2Fuser-dashboard%2Freports"},
		{"user on admin area", "/dashboard", citizen, http.StatusFound, "/user-dashboard"},
		{"user on nested admin path", "/dashboard/reports", citizen, http.StatusFound, "/user-dashboard"},
		{"admin on user area", "/user-dashboard", admin, http.StatusFound, "/dashboard"},
		{"moderator on user area", "/user-dashboard", moderator, http.StatusFound, "/dashboard"},
		{"admin on admin area", "/dashboard", admin, http.StatusOK, ""},
		{"moderator on admin area", "/dashboard/reports", moderator, http.StatusOK, ""},
		{"user on user area", "/user-dashboard", citizen, http.StatusOK, ""},
		{"unguarded path anonymous", "/track-report", nil, http.StatusOK, ""},
		{"prefix lookalike is unguarded", "/dashboards", nil, http.StatusOK, ""},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.caller != nil {
				req = req.WithContext(WithIdentity(req.Context(), tc.caller))
			}
			rr := httptest.NewRecorder()
			RouteGuard(next).ServeHTTP(rr, req)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if loc := rr.Header().Get("Location"); loc != tc.wantLoc {
				t.Fatalf("expected Location %q, got %q", tc.wantLoc, loc)
			}
		})
	}
}
