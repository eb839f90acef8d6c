package engine

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	Init(Config{FetchTimeout: 5 * time.Second})
	os.Exit(m.Run())
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{301, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}
	for _, tt := range tests {
		if got := IsRetryableStatus(tt.code); got != tt.want {
			t.Errorf("IsRetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFetchBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request has no User-Agent")
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := FetchBody(context.Background(), srv.URL+"/ok", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}

	_, err = FetchBody(context.Background(), srv.URL+"/missing", nil)
	var sce *StatusCodeError
	if !errors.As(err, &sce) {
		t.Fatalf("err = %v, want StatusCodeError", err)
	}
	if sce.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", sce.Code)
	}
}

func TestFetchHeaderOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != UserAgentBot {
			t.Errorf("User-Agent = %q, want %q", got, UserAgentBot)
		}
		if got := r.Header.Get("Referer"); got != "https://example.com/" {
			t.Errorf("Referer = %q", got)
		}
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("User-Agent", UserAgentBot)
	header.Set("Referer", "https://example.com/")
	if _, err := FetchBody(context.Background(), srv.URL, header); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchNonRetryableStatusReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	resp, err := Fetch(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("non-retryable status should not error Fetch: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusGone {
		t.Errorf("status = %d, want 410", resp.StatusCode)
	}
}

func TestReadResponseBodyGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte("compressed payload"))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	body, err := FetchBody(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "compressed payload" {
		t.Errorf("body = %q", body)
	}
}

func TestReadResponseBodyCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 4096))
	}))
	defer srv.Close()

	old := cfg.MaxBodyBytes
	cfg.MaxBodyBytes = 100
	defer func() { cfg.MaxBodyBytes = old }()

	body, err := FetchBody(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 100 {
		t.Errorf("body length = %d, want cap of 100", len(body))
	}
}
