// Package wikipedia converts Wikipedia articles into Markdown via the
// MediaWiki REST HTML endpoint.
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_anymark/internal/engine"
	"github.com/anatolykoptev/go_anymark/internal/platforms"
)

const acceptProfile = `text/html; charset=UTF-8; profile="https://www.mediawiki.org/wiki/Specs/HTML/2.7.0"`

// Converter implements platforms.Converter for Wikipedia article slugs.
type Converter struct {
	log      *slog.Logger
	apiBase  string // REST API root, e.g. https://en.wikipedia.org/api/rest_v1
	siteBase string // article link base, e.g. https://en.wikipedia.org
}

// New returns a Converter for English Wikipedia. A nil logger disables
// debug logging.
func New(log *slog.Logger) *Converter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Converter{
		log:      log,
		apiBase:  "https://en.wikipedia.org/api/rest_v1",
		siteBase: "https://en.wikipedia.org",
	}
}

var (
	trailingSpaceRe = regexp.MustCompile(`(?m)[\t ]+$`)
	blankRunsRe     = regexp.MustCompile(`\n{3,}`)
)

// ToMarkdown fetches the article HTML and its display title concurrently,
// strips non-prose markup, rewrites relative links to absolute ones, and
// converts the result to Markdown under a "# Title" heading.
func (c *Converter) ToMarkdown(ctx context.Context, slug string) (string, error) {
	engine.IncrWikipedia()

	var (
		page    string
		pageErr error
		title   string
		wg      sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		page, pageErr = c.fetchPageHTML(ctx, slug)
	}()
	go func() {
		defer wg.Done()
		title = c.fetchTitle(ctx, slug)
	}()
	wg.Wait()

	if pageErr != nil {
		engine.IncrConvertError()
		return "", pageErr
	}

	cleaned, err := c.preprocess(page)
	if err != nil {
		engine.IncrConvertError()
		return "", err
	}
	body, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		engine.IncrConvertError()
		return "", err
	}

	md := "# " + title + "\n\n" + body
	md = trailingSpaceRe.ReplaceAllString(md, "")
	md = blankRunsRe.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md), nil
}

// fetchPageHTML fetches the REST HTML rendering of an article. A non-2xx
// upstream status becomes a StatusError with that status so the route
// layer can forward it.
func (c *Converter) fetchPageHTML(ctx context.Context, slug string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
	defer cancel()

	header := http.Header{}
	header.Set("Accept", acceptProfile)
	header.Set("User-Agent", engine.UserAgentBot)

	resp, err := engine.Fetch(ctx, c.apiBase+"/page/html/"+url.PathEscape(slug), header)
	if err != nil {
		status := http.StatusBadGateway
		var sce *engine.StatusCodeError
		if errors.As(err, &sce) {
			status = sce.Code
		}
		return "", platforms.Errorf(status, "wikipedia fetch failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := engine.ReadResponseBody(resp)
	if err != nil {
		return "", platforms.Errorf(http.StatusBadGateway, "wikipedia fetch failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := engine.TruncateRunes(strings.TrimSpace(string(body)), 300, "...")
		if msg == "" {
			msg = resp.Status
		}
		return "", platforms.Errorf(resp.StatusCode, "wikipedia fetch failed: %d %s", resp.StatusCode, msg)
	}
	return string(body), nil
}

// fetchTitle asks the summary endpoint for the display title, falling back
// to slug formatting on any failure.
func (c *Converter) fetchTitle(ctx context.Context, slug string) string {
	fallback := strings.ReplaceAll(slug, "_", " ")

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("User-Agent", engine.UserAgentBot)

	body, err := engine.FetchBody(ctx, c.apiBase+"/page/summary/"+url.PathEscape(slug), header)
	if err != nil {
		c.log.Debug("wikipedia: summary fetch failed", slog.String("slug", slug), slog.Any("err", err))
		return fallback
	}
	var summary struct {
		Title        string `json:"title"`
		DisplayTitle string `json:"displaytitle"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return fallback
	}
	if summary.Title != "" {
		return summary.Title
	}
	if summary.DisplayTitle != "" {
		return summary.DisplayTitle
	}
	return fallback
}

// preprocess drops markup that has no place in a prose rendering (tables,
// infobox figures, images, reference superscripts, styles, scripts) and
// rewrites relative hrefs to absolute Wikipedia links.
func (c *Converter) preprocess(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", platforms.Errorf(http.StatusInternalServerError, "wikipedia parse failed: %v", err)
	}

	doc.Find("table, figure, img, style, script, sup.reference").Remove()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		switch {
		case strings.HasPrefix(href, "./"):
			s.SetAttr("href", c.siteBase+"/wiki/"+strings.TrimPrefix(href, "./"))
		case strings.HasPrefix(href, "/wiki/"):
			s.SetAttr("href", c.siteBase+href)
		case strings.HasPrefix(href, "//"):
			s.SetAttr("href", "https:"+href)
		}
		// absolute URLs and #fragment links stay as-is
	})

	return doc.Find("body").First().Html()
}
