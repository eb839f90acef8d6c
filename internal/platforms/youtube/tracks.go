package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_anymark/internal/engine"
)

// Track locators. Each strategy discovers the caption tracks available for
// a video through a different endpoint and fails soft: any network error,
// non-2xx response, or parse failure yields an empty track list, never an
// error to the resolver.

// captionTrack describes one caption stream found in a player response.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	VssID        string `json:"vssId"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// playerResponseMarker marks the start of the player response JSON blob in
// watch page HTML. The blob's shape is YouTube's, not ours; markup changes
// only require patching this locator.
const playerResponseMarker = "ytInitialPlayerResponse = "

// watchPageTracks scrapes the watch page HTML and reads the caption track
// list out of the embedded player response. May return nothing.
func (c *Converter) watchPageTracks(ctx context.Context, id string) []captionTrack {
	pageURL := c.watchBase + "?v=" + url.QueryEscape(id) + "&hl=en"

	header := http.Header{}
	header.Set("User-Agent", engine.RandomUserAgent())
	header.Set("Accept-Language", "en-US,en;q=0.9")
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	body, err := engine.FetchBody(ctx, pageURL, header)
	if err != nil {
		c.log.Debug("youtube: watch page fetch failed", slog.String("id", id), slog.Any("err", err))
		return nil
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		c.log.Debug("youtube: player response marker not found", slog.String("id", id))
		return nil
	}
	blob := extractJSON(body[idx+len(playerResponseMarker):])
	if blob == nil {
		return nil
	}

	var pr playerResponse
	if err := json.Unmarshal(blob, &pr); err != nil || pr.Captions == nil {
		return nil
	}
	return pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// --- timedtext listing endpoint ---

// listedTrack is one <track> element from the timedtext listing endpoint.
type listedTrack struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	LangCode string `xml:"lang_code,attr"`
	Kind     string `xml:"kind,attr"`
	VssID    string `xml:"vss_id,attr"`
}

type trackListing struct {
	Tracks []listedTrack `xml:"track"`
}

// listedTracks queries the timedtext "list tracks" endpoint. May return
// nothing.
func (c *Converter) listedTracks(ctx context.Context, ident VideoIdentity) []listedTrack {
	listURL := c.timedTextBase + "?type=list&v=" + url.QueryEscape(ident.ID) + "&hl=en"

	header := http.Header{}
	header.Set("Referer", ident.URL)

	body, err := engine.FetchBody(ctx, listURL, header)
	if err != nil {
		c.log.Debug("youtube: track listing fetch failed", slog.String("id", ident.ID), slog.Any("err", err))
		return nil
	}

	var listing trackListing
	if err := xml.Unmarshal(body, &listing); err != nil {
		c.log.Debug("youtube: track listing parse failed", slog.String("id", ident.ID), slog.Any("err", err))
		return nil
	}
	return listing.Tracks
}

// scoreListedTrack ranks listed tracks for fetch order: exact English
// language, then English variant markers, then auto-generated kind.
func scoreListedTrack(t listedTrack) int {
	lang := strings.ToLower(t.LangCode)
	vss := strings.ToLower(t.VssID)
	score := 0
	if lang == "en" {
		score += 5
	}
	if strings.Contains(vss, ".en") || strings.Contains(vss, "a.en") {
		score += 3
	}
	if strings.EqualFold(t.Kind, "asr") {
		score++
	}
	return score
}

// timedTextURL builds the caption fetch URL for a listed track.
func (c *Converter) timedTextURL(id string, t listedTrack) string {
	v := url.Values{}
	v.Set("v", id)
	if t.LangCode != "" {
		v.Set("lang", t.LangCode)
	}
	if strings.EqualFold(t.Kind, "asr") {
		v.Set("kind", "asr")
	}
	if t.Name != "" {
		v.Set("name", t.Name)
	}
	return c.timedTextBase + "?" + v.Encode()
}
