package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"sort"
	"strings"
	"time"
)

// External-tool locator: yt-dlp dumps a single JSON document describing a
// video, including every available caption track per language.

// SubtitleEntry is one caption variant inside a yt-dlp info dump.
type SubtitleEntry struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// VideoInfo is the subset of a yt-dlp -J dump the resolver needs. Both
// maps are keyed by language code ("en", "en-orig", "fr", ...).
type VideoInfo struct {
	Subtitles         map[string][]SubtitleEntry `json:"subtitles"`
	AutomaticCaptions map[string][]SubtitleEntry `json:"automatic_captions"`
}

// InfoDumper is the capability of dumping structured video info for a
// watch URL. The production adapter shells out to yt-dlp; tests use fakes.
// Any failure means "this strategy produced nothing" to the resolver.
type InfoDumper interface {
	DumpInfo(ctx context.Context, watchURL string) (*VideoInfo, error)
}

// ytDlpRunner invokes the yt-dlp binary as a subprocess.
type ytDlpRunner struct {
	path    string
	timeout time.Duration
}

// ProbeYtDlp checks once at startup whether yt-dlp is invocable and returns
// a subprocess-backed InfoDumper, or nil when the binary is absent.
// An empty path means "look it up on $PATH".
func ProbeYtDlp(path string, timeout time.Duration) InfoDumper {
	if path == "" {
		path = "yt-dlp"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ytDlpRunner{path: resolved, timeout: timeout}
}

// DumpInfo runs `yt-dlp -J` and decodes the JSON line from its output.
// yt-dlp mixes warnings into the stream, so the output is scanned for the
// line that actually holds the document.
func (y *ytDlpRunner) DumpInfo(ctx context.Context, watchURL string) (*VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, y.path, "-J", "--no-warnings", "--skip-download", watchURL)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	var jsonLine string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "{") {
			jsonLine = line
		}
	}
	if jsonLine == "" {
		return nil, errors.New("yt-dlp: no JSON in output")
	}

	var info VideoInfo
	if err := json.Unmarshal([]byte(jsonLine), &info); err != nil {
		return nil, fmt.Errorf("yt-dlp: decode info: %w", err)
	}
	return &info, nil
}

// pickedTrack is the caption variant chosen from an info dump.
type pickedTrack struct {
	URL  string
	Lang string
	Ext  string
}

// preferredLangs is the fixed language preference order: the original-
// language auto track first, then English variants.
var preferredLangs = []string{"en-orig", "en", "en-US", "en-GB"}

// pickTrackFromInfo selects a caption track from a yt-dlp dump by language
// preference, favouring a VTT entry within the chosen language. Returns
// nil when the dump holds no usable track.
func pickTrackFromInfo(info *VideoInfo) *pickedTrack {
	if info == nil {
		return nil
	}
	caps := info.AutomaticCaptions
	if len(caps) == 0 {
		caps = info.Subtitles
	}
	if len(caps) == 0 {
		return nil
	}

	var langs []string
	for lang := range caps {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	order := append([]string{}, preferredLangs...)
	for _, lang := range langs {
		lower := strings.ToLower(lang)
		if (strings.HasPrefix(lower, "en-") || strings.HasPrefix(lower, "en_")) && !slices.Contains(order, lang) {
			order = append(order, lang)
		}
	}

	for _, lang := range order {
		if t := pickFromEntries(caps[lang], lang); t != nil {
			return t
		}
	}
	for _, lang := range langs {
		entries := caps[lang]
		if len(entries) > 0 && entries[0].URL != "" {
			return &pickedTrack{URL: entries[0].URL, Lang: lang, Ext: entries[0].Ext}
		}
	}
	return nil
}

func pickFromEntries(entries []SubtitleEntry, lang string) *pickedTrack {
	for _, e := range entries {
		if strings.EqualFold(e.Ext, "vtt") && e.URL != "" {
			return &pickedTrack{URL: e.URL, Lang: lang, Ext: "vtt"}
		}
	}
	for _, e := range entries {
		if e.URL != "" {
			return &pickedTrack{URL: e.URL, Lang: lang, Ext: e.Ext}
		}
	}
	return nil
}
