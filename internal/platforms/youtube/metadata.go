package youtube

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_anymark/internal/engine"
)

// Metadata holds best-effort video facts. Any field may be empty; a
// missing field never fails the conversion.
type Metadata struct {
	Title       string
	Author      string
	URL         string
	PublishedAt string // ISO-8601, "" = unknown
}

var (
	ogTitleRe       = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)
	datePublishedRe = regexp.MustCompile(`(?i)itemprop=["']datePublished["'][^>]+content=["']([^"']+)["']`)
	ownerChannelRe  = regexp.MustCompile(`"ownerChannelName"\s*:\s*"([^"]+)"`)
	uploadDateRe    = regexp.MustCompile(`^\d{8}$`)
	isoDatePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// fetchMetadata combines the oEmbed endpoint with a watch-page scrape for
// whatever the former left blank. Every individual failure is absorbed.
func (c *Converter) fetchMetadata(ctx context.Context, ident VideoIdentity) Metadata {
	engine.IncrYouTubeMetadata()
	meta := Metadata{URL: ident.URL}

	oembedURL := c.oembedURL + "?url=" + url.QueryEscape(ident.URL) + "&format=json"
	if body, err := engine.FetchBody(ctx, oembedURL, nil); err == nil {
		var o struct {
			Title      string `json:"title"`
			AuthorName string `json:"author_name"`
		}
		if err := json.Unmarshal(body, &o); err == nil {
			meta.Title = strings.TrimSpace(o.Title)
			meta.Author = strings.TrimSpace(o.AuthorName)
		}
	} else {
		c.log.Debug("youtube: oembed failed", slog.String("id", ident.ID), slog.Any("err", err))
	}

	header := http.Header{}
	header.Set("Accept-Language", "en-US,en;q=0.9")
	body, err := engine.FetchBody(ctx, c.watchBase+"?v="+url.QueryEscape(ident.ID), header)
	if err != nil {
		c.log.Debug("youtube: metadata scrape failed", slog.String("id", ident.ID), slog.Any("err", err))
		return meta
	}
	page := string(body)

	if meta.Title == "" {
		if m := ogTitleRe.FindStringSubmatch(page); m != nil {
			meta.Title = strings.TrimSpace(m[1])
		}
	}
	if m := datePublishedRe.FindStringSubmatch(page); m != nil {
		meta.PublishedAt = isoFromUploadDate(strings.TrimSpace(m[1]))
	}
	if meta.Author == "" {
		if m := ownerChannelRe.FindStringSubmatch(page); m != nil {
			meta.Author = strings.TrimSpace(m[1])
		}
	}
	return meta
}

// isoFromUploadDate normalizes the date formats YouTube embeds (compact
// "YYYYMMDD" upload dates and ISO date(-time) strings) to a midnight-UTC
// ISO-8601 timestamp. Returns "" for anything unrecognised.
func isoFromUploadDate(s string) string {
	s = strings.TrimSpace(s)
	if uploadDateRe.MatchString(s) {
		return s[0:4] + "-" + s[4:6] + "-" + s[6:8] + "T00:00:00+00:00"
	}
	if isoDatePrefixRe.MatchString(s) {
		date, _, _ := strings.Cut(s, "T")
		return date + "T00:00:00+00:00"
	}
	return ""
}
