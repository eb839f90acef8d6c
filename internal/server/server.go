// Package server exposes the conversion HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_anymark/internal/engine"
	"github.com/anatolykoptev/go_anymark/internal/platforms"
)

type handler struct {
	registry *platforms.Registry
}

// NewHandler builds the route mux over a platform registry.
func NewHandler(registry *platforms.Registry) http.Handler {
	h := &handler{registry: registry}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /platforms", h.handlePlatforms)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /metrics", h.handleMetrics)
	mux.HandleFunc("GET /{platform}/{identifier}", h.handleConvert)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(homePage))
}

func (h *handler) handlePlatforms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"platforms": h.registry.Keys(),
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(engine.FormatMetrics()))
}

// handleConvert dispatches /{platform}/{identifier} to the registered
// converter. Unknown platforms are 404; conversion failures answer with
// the upstream status when the error carries one, 500 otherwise.
func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")
	identifier := r.PathValue("identifier")

	conv := h.registry.Lookup(platform)
	if conv == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":    "unknown_platform",
			"platform": platform,
		})
		return
	}

	markdown, err := conv.ToMarkdown(r.Context(), identifier)
	if err != nil {
		status := http.StatusInternalServerError
		var se *platforms.StatusError
		if errors.As(err, &se) {
			status = se.Status
		}
		slog.Warn("conversion failed",
			slog.String("platform", platform),
			slog.String("identifier", identifier),
			slog.Int("status", status),
			slog.Any("err", err),
		)
		writeJSON(w, status, map[string]any{
			"error":   "failed_to_convert",
			"message": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(markdown))
}

const homePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>anymark</title>
<meta name="description" content="turn any platform page into markdown!">
</head>
<body>
<h1>anymark</h1>
<p>turn any platform page into markdown!</p>
<p>view available platforms at <a href="/platforms">/platforms</a></p>
<p>visit <code>/[platform]/[identifier]</code> to get the markdown version of a page,
for example <a href="/wikipedia/Tortoiseshell_cat">/wikipedia/Tortoiseshell_cat</a>.</p>
</body>
</html>
`
