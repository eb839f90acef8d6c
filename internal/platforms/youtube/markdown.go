package youtube

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// secondsToMmSs formats a cue start as "MM:SS". Minutes are not capped at
// 59, there is no hour rollover, so 3661s renders as "61:01".
func secondsToMmSs(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	tt := int(math.Floor(t))
	return fmt.Sprintf("%02d:%02d", tt/60, tt%60)
}

// frontMatterDoc fixes the key order of the rendered front matter.
type frontMatterDoc struct {
	Title       string  `yaml:"title"`
	Author      *string `yaml:"author"`
	URL         *string `yaml:"url"`
	PublishedAt *string `yaml:"published_at"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// frontMatter renders the YAML front-matter block. Unknown fields render
// as null; a missing title becomes "Untitled".
func frontMatter(meta Metadata) string {
	doc := frontMatterDoc{
		Title:       meta.Title,
		Author:      nullable(meta.Author),
		URL:         nullable(meta.URL),
		PublishedAt: nullable(meta.PublishedAt),
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "---\ntitle: " + doc.Title + "\n---"
	}
	return "---\n" + strings.TrimSpace(string(out)) + "\n---"
}

// composeDocument renders the final Markdown: front matter, a blank line,
// then one "[MM:SS] text" line per cue, with a single trailing newline.
func composeDocument(meta Metadata, cues []Cue) string {
	lines := make([]string, 0, len(cues))
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		lines = append(lines, "["+secondsToMmSs(cue.Start)+"] "+text)
	}
	body := strings.Join(lines, "\n")
	return strings.TrimSpace(frontMatter(meta)+"\n\n"+body) + "\n"
}
