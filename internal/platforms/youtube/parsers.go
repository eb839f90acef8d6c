package youtube

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_anymark/internal/engine"
)

// Caption payload parsers. Each one takes a raw payload and returns
// whatever cues it could extract, silently skipping unparsable segments.
// Time units are converted to float seconds here so the rest of the
// pipeline is format-agnostic.

// --- WebVTT ---

var vttTimeRe = regexp.MustCompile(`^(\d{1,2}:)?\d{2}:\d{2}\.\d{3}\s+-->\s+(\d{1,2}:)?\d{2}:\d{2}\.\d{3}`)

// vttClock converts "HH:MM:SS.mmm" or "MM:SS.mmm" to seconds.
func vttClock(s string) float64 {
	parts := strings.Split(s, ":")
	var secs float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			v = 0
		}
		secs = secs*60 + v
	}
	return secs
}

// parseVTT scans line-delimited WebVTT text for timestamp-range lines and
// accumulates the following non-blank lines as cue text. Duplicate caption
// lines within one cue are merged, not concatenated repeatedly.
func parseVTT(text string) []Cue {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var cues []Cue
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		i++
		if !vttTimeRe.MatchString(line) {
			continue
		}
		startStr, endStr, _ := strings.Cut(line, "-->")
		startStr = strings.TrimSpace(startStr)
		endStr = strings.TrimSpace(endStr)
		if fields := strings.Fields(endStr); len(fields) > 0 {
			endStr = fields[0]
		} else {
			endStr = startStr
		}
		start := vttClock(startStr)
		end := vttClock(endStr)
		if start < 0 {
			start = 0
		}
		if end < start {
			end = start
		}

		seen := make(map[string]bool)
		var buf []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			part := engine.CleanHTML(lines[i])
			if part != "" && !seen[part] {
				seen[part] = true
				buf = append(buf, part)
			}
			i++
		}
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if cueText := engine.CollapseSpaces(strings.Join(buf, " ")); cueText != "" {
			cues = append(cues, Cue{Start: start, End: end, Text: cueText})
		}
	}
	return cues
}

// --- Timed JSON (json3) ---

type json3Doc struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	T    float64 `json:"t"` // start, ms
	D    float64 `json:"d"` // duration, ms
	Segs []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
}

// parseJSON3 parses YouTube's timed-JSON caption format: an "events" list
// of {t, d, segs} entries with millisecond times.
func parseJSON3(data []byte) []Cue {
	var doc json3Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var cues []Cue
	for _, ev := range doc.Events {
		var parts []string
		for _, seg := range ev.Segs {
			if seg.UTF8 != "" {
				parts = append(parts, seg.UTF8)
			}
		}
		text := engine.CollapseSpaces(strings.Join(parts, " "))
		if text == "" {
			continue
		}
		start := ev.T / 1000.0
		if start < 0 {
			start = 0
		}
		dur := ev.D / 1000.0
		if dur < 0 {
			dur = 0
		}
		cues = append(cues, Cue{Start: start, End: start + dur, Text: text})
	}
	return cues
}

// --- Timedtext / srv3 XML ---

type timedTextDoc struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",innerxml"`
}

var (
	srv3PRe     = regexp.MustCompile(`(?s)<p([^>]*)>(.*?)</p>`)
	srv3TAttrRe = regexp.MustCompile(`\bt="(\d+)"`)
	srv3DAttrRe = regexp.MustCompile(`\bd="(\d+)"`)
	srv3SRe     = regexp.MustCompile(`(?s)<s[^>]*>(.*?)</s>`)
)

// xmlText strips residual tags, collapses whitespace, and unescapes the
// standard XML entities.
func xmlText(s string) string {
	return html.UnescapeString(engine.CollapseSpaces(engine.CleanHTML(s)))
}

// parseTTML parses timed XML captions. Two sub-grammars are recognised:
// `<text start="" dur="">` elements (the classic timedtext format) and
// `<p t="" d="">` blocks wrapping `<s>` spans (srv3). Whichever grammar
// matches first is used exclusively for the document.
func parseTTML(data []byte) []Cue {
	if cues := parseTimedTextElements(data); len(cues) > 0 {
		return cues
	}
	return parseSrv3Blocks(data)
}

func parseTimedTextElements(data []byte) []Cue {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var doc timedTextDoc
	if err := dec.Decode(&doc); err != nil {
		return nil
	}
	var cues []Cue
	for _, line := range doc.Lines {
		start, err := strconv.ParseFloat(line.Start, 64)
		if err != nil || start < 0 {
			continue
		}
		dur, err := strconv.ParseFloat(line.Dur, 64)
		if err != nil || dur < 0 {
			dur = 0
		}
		text := xmlText(line.Text)
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Start: start, End: start + dur, Text: text})
	}
	return cues
}

func parseSrv3Blocks(data []byte) []Cue {
	var cues []Cue
	for _, m := range srv3PRe.FindAllSubmatch(data, -1) {
		attrs := m[1]
		ta := srv3TAttrRe.FindSubmatch(attrs)
		if ta == nil {
			continue
		}
		tMs, err := strconv.ParseFloat(string(ta[1]), 64)
		if err != nil {
			continue
		}
		var dMs float64
		if da := srv3DAttrRe.FindSubmatch(attrs); da != nil {
			dMs, _ = strconv.ParseFloat(string(da[1]), 64)
		}
		inner := m[2]
		var parts []string
		for _, sm := range srv3SRe.FindAllSubmatch(inner, -1) {
			parts = append(parts, string(sm[1]))
		}
		if len(parts) == 0 {
			parts = []string{string(inner)}
		}
		text := xmlText(strings.Join(parts, " "))
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Start: tMs / 1000.0, End: (tMs + dMs) / 1000.0, Text: text})
	}
	return cues
}
