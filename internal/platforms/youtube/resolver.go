package youtube

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_anymark/internal/engine"
)

// ErrNoTranscript is the single terminal failure of transcript resolution:
// every locator strategy was exhausted with zero cues.
var ErrNoTranscript = errors.New("no transcript available")

// fetchTranscript resolves a caption track and returns its deduplicated
// cues. Strategies run sequentially in fixed priority order, the next only
// attempted once the previous produced nothing, and every failure below
// this boundary is absorbed as an empty result.
func (c *Converter) fetchTranscript(ctx context.Context, ident VideoIdentity) ([]Cue, error) {
	engine.IncrYouTubeTranscript()

	if cues := c.viaInfoDumper(ctx, ident); len(cues) > 0 {
		return dedupeRollingCaptions(cues), nil
	}
	if cues := c.viaWatchPage(ctx, ident); len(cues) > 0 {
		return dedupeRollingCaptions(cues), nil
	}
	if cues := c.viaTrackListing(ctx, ident); len(cues) > 0 {
		return dedupeRollingCaptions(cues), nil
	}
	return nil, ErrNoTranscript
}

// viaInfoDumper asks the external tool for the video's caption inventory
// and fetches the preferred track. The dump already points at concrete
// caption URLs, so the fetch tries VTT first and raw timed XML second.
func (c *Converter) viaInfoDumper(ctx context.Context, ident VideoIdentity) []Cue {
	if c.dumper == nil {
		return nil
	}
	info, err := c.dumper.DumpInfo(ctx, ident.URL)
	if err != nil {
		c.log.Debug("youtube: info dump failed", slog.String("id", ident.ID), slog.Any("err", err))
		return nil
	}
	pick := pickTrackFromInfo(info)
	if pick == nil {
		return nil
	}

	fetchURL := pick.URL
	if u, err := url.Parse(fetchURL); err == nil && u.Query().Get("fmt") == "" {
		q := u.Query()
		q.Set("fmt", "vtt")
		u.RawQuery = q.Encode()
		fetchURL = u.String()
	}

	header := http.Header{}
	header.Set("Referer", ident.URL)
	body, err := engine.FetchBody(ctx, fetchURL, header)
	if err != nil {
		c.log.Debug("youtube: caption fetch failed", slog.String("lang", pick.Lang), slog.Any("err", err))
		return nil
	}
	cues := parseVTT(string(body))
	if len(cues) == 0 {
		cues = parseTTML(body)
	}
	return cues
}

// viaWatchPage reads the track list embedded in the watch page and fetches
// the English track (language code "en" or a ".en" vss marker), falling
// back to the first track.
func (c *Converter) viaWatchPage(ctx context.Context, ident VideoIdentity) []Cue {
	tracks := c.watchPageTracks(ctx, ident.ID)
	if len(tracks) == 0 {
		return nil
	}
	pick := tracks[0]
	for _, t := range tracks {
		if t.LanguageCode == "en" || strings.Contains(t.VssID, ".en") {
			pick = t
			break
		}
	}
	if pick.BaseURL == "" {
		return nil
	}
	return c.fetchCaptionURL(ctx, pick.BaseURL, ident.URL)
}

// viaTrackListing scores the tracks returned by the listing endpoint and
// attempts each in descending order until one yields cues.
func (c *Converter) viaTrackListing(ctx context.Context, ident VideoIdentity) []Cue {
	tracks := c.listedTracks(ctx, ident)
	if len(tracks) == 0 {
		return nil
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return scoreListedTrack(tracks[i]) > scoreListedTrack(tracks[j])
	})
	for _, t := range tracks {
		if cues := c.fetchCaptionURL(ctx, c.timedTextURL(ident.ID, t), ident.URL); len(cues) > 0 {
			return cues
		}
	}
	return nil
}

// fetchCaptionURL fetches one caption URL in three candidate formats:
// the fmt=vtt override first, then fmt=json3, then the raw URL parsed as
// timed XML. Stops at the first format that yields at least one cue.
func (c *Converter) fetchCaptionURL(ctx context.Context, baseURL, referer string) []Cue {
	header := http.Header{}
	header.Set("Referer", referer)

	if u := withFormat(baseURL, "vtt"); u != "" {
		if body, err := engine.FetchBody(ctx, u, header); err == nil {
			if cues := parseVTT(string(body)); len(cues) > 0 {
				return cues
			}
		}
	}
	if u := withFormat(baseURL, "json3"); u != "" {
		if body, err := engine.FetchBody(ctx, u, header); err == nil {
			if cues := parseJSON3(body); len(cues) > 0 {
				return cues
			}
		}
	}
	if body, err := engine.FetchBody(ctx, baseURL, header); err == nil {
		if cues := parseTTML(body); len(cues) > 0 {
			return cues
		}
	}
	return nil
}

// withFormat returns baseURL with the fmt query parameter set, or "" when
// the URL does not parse.
func withFormat(baseURL, format string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("fmt", format)
	u.RawQuery = q.Encode()
	return u.String()
}
