// Package youtube converts YouTube videos into timestamped Markdown
// transcripts.
//
// The implementation is split across files by responsibility:
//
//	normalize.go — raw input → canonical video identity
//	cue.go       — Cue type and rolling-caption deduplication
//	parsers.go   — VTT / json3 / timedtext-XML cue parsers
//	tracks.go    — watch-page and timedtext-listing track locators
//	ytdlp.go     — external-tool locator (yt-dlp subprocess)
//	resolver.go  — strategy fallthrough and per-track format fetch
//	metadata.go  — best-effort title/author/publish-date
//	markdown.go  — front matter + timestamped body
package youtube

import (
	"context"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_anymark/internal/engine"
)

// Converter implements platforms.Converter for YouTube videos.
// All state is request-independent; every conversion builds its own
// intermediate data.
type Converter struct {
	log    *slog.Logger
	dumper InfoDumper // nil = external-tool strategy disabled

	watchBase     string
	oembedURL     string
	timedTextBase string
}

// New returns a Converter with production endpoints. A nil logger
// disables debug logging.
func New(log *slog.Logger) *Converter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Converter{
		log:           log,
		watchBase:     "https://www.youtube.com/watch",
		oembedURL:     "https://www.youtube.com/oembed",
		timedTextBase: "https://www.youtube.com/api/timedtext",
	}
}

// UseInfoDumper enables the external-tool locator strategy.
func (c *Converter) UseInfoDumper(d InfoDumper) { c.dumper = d }

// ToMarkdown converts a video ID or URL into a Markdown transcript
// document. Metadata and transcript resolution run concurrently; only a
// missing transcript (or invalid input) fails the request.
func (c *Converter) ToMarkdown(ctx context.Context, input string) (string, error) {
	ident, err := normalizeInput(input)
	if err != nil {
		return "", err
	}

	var (
		meta   Metadata
		cues   []Cue
		cueErr error
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		meta = c.fetchMetadata(ctx, ident)
	}()
	go func() {
		defer wg.Done()
		cues, cueErr = c.fetchTranscript(ctx, ident)
	}()
	wg.Wait()

	if cueErr != nil {
		engine.IncrConvertError()
		return "", cueErr
	}
	return composeDocument(meta, cues), nil
}
