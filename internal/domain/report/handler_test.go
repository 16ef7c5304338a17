package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/middleware"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(svc *Service) chi.Router {
	r := chi.NewRouter()
	r.Mount("/reports", NewHandler(svc).Routes(middleware.RequireAuth, passthrough))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, caller *user.Identity) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), caller))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env apiEnvelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestHandlerSubmitAndTrack(t *testing.T) {
	router := newTestRouter(NewService(newMemRepo(), nil))

	rr, env := do(t, router, http.MethodPost, "/reports",
		`{"title":"Fire near market","description":"Smoke","type":"FIRE_OUTBREAK","status":"RESOLVED"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created ReportResponse
	_ = json.Unmarshal(env.Data, &created)
	if created.Status != StatusPending || created.AuthorID != nil {
		t.Fatalf("unexpected created report %+v", created)
	}

	rr, env = do(t, router, http.MethodGet, "/reports/"+created.ReportID+"/details", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var raw map[string]interface{}
	_ = json.Unmarshal(env.Data, &raw)
	if _, leaked := raw["id"]; leaked {
		t.Fatal("tracking view must not expose internal id")
	}
	if _, leaked := raw["author_id"]; leaked {
		t.Fatal("tracking view must not expose author")
	}

	rr, _ = do(t, router, http.MethodGet, "/reports/CS-UNKNOWN00/details", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHandlerSubmitValidation(t *testing.T) {
	router := newTestRouter(NewService(newMemRepo(), nil))

	rr, env := do(t, router, http.MethodPost, "/reports", `{"title":" ","description":"x","type":"FIRE_OUTBREAK"}`, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" || env.Error.Details["title"] == "" {
		t.Fatalf("unexpected error body %s", rr.Body.String())
	}

	rr, _ = do(t, router, http.MethodPost, "/reports", `{not json`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandlerUpdateStatusMapping(t *testing.T) {
	svc := NewService(newMemRepo(), Lifecycle)
	router := newTestRouter(svc)
	created, err := svc.SubmitReport(httptest.NewRequest(http.MethodGet, "/", nil).Context(), fireReport(), citizenID)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	path := "/reports/" + created.ReportID

	cases := []struct {
		name   string
		body   string
		caller *user.Identity
		want   int
	}{
		{"anonymous", `{"status":"IN_PROGRESS"}`, nil, http.StatusUnauthorized},
		{"user forbidden", `{"status":"RESOLVED"}`, citizenID, http.StatusForbidden},
		{"user with empty status", `{"status":""}`, citizenID, http.StatusForbidden},
		{"user with missing status", `{}`, citizenID, http.StatusForbidden},
		{"unknown status", `{"status":"CLOSED"}`, adminID, http.StatusUnprocessableEntity},
		{"missing status", `{}`, adminID, http.StatusUnprocessableEntity},
		{"admin moves", `{"status":"RESOLVED"}`, adminID, http.StatusOK},
		{"terminal frozen", `{"status":"PENDING"}`, moderatorID, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, _ := do(t, router, http.MethodPatch, path, tc.body, tc.caller)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}

	rr, _ := do(t, router, http.MethodPatch, "/reports/CS-UNKNOWN00", `{"status":"RESOLVED"}`, adminID)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHandlerListRequiresSession(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	router := newTestRouter(svc)

	rr, _ := do(t, router, http.MethodGet, "/reports", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	rr, _ = do(t, router, http.MethodGet, "/reports?status=CLOSED", "", adminID)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	rr, env := do(t, router, http.MethodGet, "/reports/stats", "", citizenID)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var counts map[string]int
	_ = json.Unmarshal(env.Data, &counts)
	if len(counts) != 4 {
		t.Fatalf("expected four status keys, got %v", counts)
	}
}
