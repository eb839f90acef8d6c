package youtube

import "strings"

// Cue is one timed caption unit. Times are seconds; End >= Start >= 0 and
// Text is non-empty after trimming for every cue a parser emits.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// sameStartWindow is how close two cue start times must be (seconds) to be
// treated as the same utterance during deduplication.
const sameStartWindow = 0.5

// dedupeRollingCaptions collapses the near-duplicate cues that roll-up
// caption renderers emit as text scrolls. Single left-to-right pass keeping
// one "last emitted" cue:
//
//   - exact text repeat extends the last cue's end time
//   - within the same-utterance window, a prefix extension replaces the
//     last cue's text (and the reverse containment just extends its end)
//   - anything else is emitted as a new cue
//
// Idempotent: applying it to already-deduplicated input is a no-op.
func dedupeRollingCaptions(cues []Cue) []Cue {
	if len(cues) == 0 {
		return nil
	}
	out := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		start, end := cue.Start, cue.End
		if end < start {
			end = start
		}
		if len(out) == 0 {
			out = append(out, Cue{Start: start, End: end, Text: text})
			continue
		}
		last := &out[len(out)-1]
		if text == last.Text {
			last.End = max(last.End, end)
			continue
		}
		diff := start - last.Start
		if diff < sameStartWindow && diff > -sameStartWindow {
			if strings.HasPrefix(text, last.Text) {
				last.Text = text
				last.End = max(last.End, end)
				continue
			}
			if strings.HasPrefix(last.Text, text) {
				last.End = max(last.End, end)
				continue
			}
		}
		out = append(out, Cue{Start: start, End: end, Text: text})
	}
	return out
}
