// go_anymark — platform page → Markdown conversion server.
//
// Converts pages from registered platforms (Wikipedia articles, YouTube
// transcripts) into normalized Markdown documents over a small HTTP API:
//
//	GET /{platform}/{identifier} → text/markdown
//	GET /platforms               → registered platform keys
//	GET /health, GET /metrics
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go_anymark/internal/engine"
	"github.com/anatolykoptev/go_anymark/internal/platforms"
	"github.com/anatolykoptev/go_anymark/internal/platforms/wikipedia"
	"github.com/anatolykoptev/go_anymark/internal/platforms/youtube"
	"github.com/anatolykoptev/go_anymark/internal/server"
)

var (
	version = "dev"
	port    = env.Str("PORT", "3000")
)

func main() {
	engine.Init(engine.Config{
		FetchTimeout: env.Duration("FETCH_TIMEOUT", 15*time.Second),
		MaxBodyBytes: env.Int("MAX_BODY_BYTES", 6*1024*1024),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	})

	registry := platforms.NewRegistry()
	registry.Register("wikipedia", wikipedia.New(slog.Default()))

	yt := youtube.New(slog.Default())
	if dumper := youtube.ProbeYtDlp(env.Str("YTDLP_PATH", ""), env.Duration("YTDLP_TIMEOUT", 30*time.Second)); dumper != nil {
		yt.UseInfoDumper(dumper)
		slog.Info("yt-dlp available, external-tool strategy enabled")
	} else {
		slog.Info("yt-dlp not found, external-tool strategy disabled")
	}
	registry.Register("youtube", yt)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.NewHandler(registry),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting go_anymark",
			slog.String("version", version),
			slog.String("port", port),
			slog.Any("platforms", registry.Keys()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}
