package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_anymark/internal/platforms"
)

type fakeConverter struct {
	markdown string
	err      error
}

func (f *fakeConverter) ToMarkdown(context.Context, string) (string, error) {
	return f.markdown, f.err
}

func newTestHandler(t *testing.T, conv platforms.Converter) http.Handler {
	t.Helper()
	reg := platforms.NewRegistry()
	if conv != nil {
		reg.Register("fake", conv)
	}
	return NewHandler(reg)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestHandler(t, nil), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Status != "healthy" || body.Timestamp == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestPlatformsList(t *testing.T) {
	rec := get(t, newTestHandler(t, &fakeConverter{}), "/platforms")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Platforms []string `json:"platforms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(body.Platforms) != 1 || body.Platforms[0] != "fake" {
		t.Errorf("platforms = %v", body.Platforms)
	}
}

func TestHome(t *testing.T) {
	rec := get(t, newTestHandler(t, nil), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestHandler(t, nil), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fetch_requests") {
		t.Errorf("metrics body missing counters:\n%s", rec.Body.String())
	}
}

func TestConvertSuccess(t *testing.T) {
	h := newTestHandler(t, &fakeConverter{markdown: "# hi\n"})
	rec := get(t, h, "/fake/anything")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "# hi\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestConvertUnknownPlatform(t *testing.T) {
	rec := get(t, newTestHandler(t, nil), "/nope/anything")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error    string `json:"error"`
		Platform string `json:"platform"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Error != "unknown_platform" || body.Platform != "nope" {
		t.Errorf("body = %+v", body)
	}
}

func TestConvertErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"status error forwarded", platforms.Errorf(http.StatusBadRequest, "bad id"), http.StatusBadRequest},
		{"upstream status forwarded", platforms.Errorf(http.StatusNotFound, "no such page"), http.StatusNotFound},
		{"plain error is 500", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &fakeConverter{err: tt.err})
			rec := get(t, h, "/fake/anything")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if body.Error != "failed_to_convert" || body.Message == "" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
