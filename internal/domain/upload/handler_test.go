package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/civicsafe/civicsafe-api/internal/pkg/imaging"
)

type memStorage struct {
	files map[string][]byte
}

func (m *memStorage) Put(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[key] = data
	return nil
}

func (m *memStorage) GetURL(key string) string { return "https://cdn.test/" + key }
func (m *memStorage) Check(context.Context) error { return nil }

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "photo.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newTestHandler(store *memStorage) *Handler {
	svc := NewService(store, imaging.NewProcessor(imaging.Config{MaxWidth: 64, MaxHeight: 64}))
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }
	return NewHandler(svc)
}

func TestEvidenceUploadStoresResizedImage(t *testing.T) {
	store := &memStorage{files: map[string][]byte{}}
	h := newTestHandler(store)

	body, contentType := multipartBody(t, "file", pngBytes(t, 256, 128))
	req := httptest.NewRequest(http.MethodPost, "/evidence", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var env struct {
		Data Evidence `json:"data"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &env)

	keyPattern := regexp.MustCompile(`^evidence/2026/03/[0-9a-f-]{36}\.png$`)
	if !keyPattern.MatchString(env.Data.Key) {
		t.Fatalf("unexpected key %q", env.Data.Key)
	}
	if env.Data.URL != "https://cdn.test/"+env.Data.Key {
		t.Fatalf("unexpected url %q", env.Data.URL)
	}
	if env.Data.Width != 64 || env.Data.Height != 32 {
		t.Fatalf("expected 64x32, got %dx%d", env.Data.Width, env.Data.Height)
	}
	if _, ok := store.files[env.Data.Key]; !ok {
		t.Fatal("expected file stored")
	}
}

func TestEvidenceUploadRejects(t *testing.T) {
	cases := []struct {
		name  string
		field string
		data  []byte
	}{
		{"not an image", "file", []byte("%PDF-1.7 not a photo")},
		{"missing field", "attachment", pngBytes(t, 4, 4)},
		{"corrupt png", "file", []byte("\x89PNG\r\n\x1a\nbroken")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStorage{files: map[string][]byte{}}
			body, contentType := multipartBody(t, tc.field, tc.data)
			req := httptest.NewRequest(http.MethodPost, "/evidence", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()
			newTestHandler(store).Routes().ServeHTTP(rr, req)

			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
			}
			if len(store.files) != 0 {
				t.Fatal("nothing must be stored")
			}
		})
	}
}
