package youtube

import (
	"strings"
	"testing"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:00.320 --> 00:00:02.880
<c.colorCCCCCC>so</c> today we are going

00:00:02.880 --> 00:00:05.120
to talk about go
to talk about go

01:02:03.500 --> 01:02:04.000
an hour in
`

func TestParseVTT(t *testing.T) {
	cues := parseVTT(sampleVTT)
	if len(cues) != 3 {
		t.Fatalf("got %d cues, want 3: %+v", len(cues), cues)
	}
	if cues[0].Text != "so today we are going" {
		t.Errorf("cue 0 text = %q, want tags stripped", cues[0].Text)
	}
	if cues[0].Start != 0.32 || cues[0].End != 2.88 {
		t.Errorf("cue 0 times = %v..%v, want 0.32..2.88", cues[0].Start, cues[0].End)
	}
	// duplicate lines inside one cue merge, not repeat
	if cues[1].Text != "to talk about go" {
		t.Errorf("cue 1 text = %q, want in-cue duplicate collapsed", cues[1].Text)
	}
	if cues[2].Start != 3723.5 {
		t.Errorf("cue 2 start = %v, want 3723.5 (hour group)", cues[2].Start)
	}
}

func TestParseVTTGarbage(t *testing.T) {
	for _, input := range []string{"", "WEBVTT\n\nnot a timestamp\njunk\n", "random text"} {
		if cues := parseVTT(input); len(cues) != 0 {
			t.Errorf("parseVTT(%q) = %d cues, want 0", input, len(cues))
		}
	}
}

func TestParseJSON3(t *testing.T) {
	cues := parseJSON3([]byte(`{"events":[{"t":0,"d":2000,"segs":[{"utf8":"Hi"}]}]}`))
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	want := Cue{Start: 0, End: 2, Text: "Hi"}
	if cues[0] != want {
		t.Errorf("got %+v, want %+v", cues[0], want)
	}
}

func TestParseJSON3MultiSeg(t *testing.T) {
	payload := `{"events":[
		{"t":1500,"d":500,"segs":[{"utf8":"hello"},{"utf8":"world"}]},
		{"t":3000,"d":1000,"segs":[{"utf8":"  "}]},
		{"t":5000,"segs":[{"utf8":"tail"}]}
	]}`
	cues := parseJSON3([]byte(payload))
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2 (blank event skipped): %+v", len(cues), cues)
	}
	if cues[0].Text != "hello world" {
		t.Errorf("cue 0 text = %q", cues[0].Text)
	}
	if cues[0].Start != 1.5 || cues[0].End != 2.0 {
		t.Errorf("cue 0 times = %v..%v, want 1.5..2.0", cues[0].Start, cues[0].End)
	}
	if cues[1].Start != 5.0 || cues[1].End != 5.0 {
		t.Errorf("cue 1 times = %v..%v, want 5.0..5.0", cues[1].Start, cues[1].End)
	}
}

func TestParseJSON3Garbage(t *testing.T) {
	for _, input := range []string{"", "<xml/>", `{"events":"nope"}`} {
		if cues := parseJSON3([]byte(input)); len(cues) != 0 {
			t.Errorf("parseJSON3(%q) = %d cues, want 0", input, len(cues))
		}
	}
}

func TestParseTTMLTextElements(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="10.5" dur="2">surprised you with how they comport</text>
  <text start="13" dur="1.5">Tom &amp; Jerry &#39;classic&#39;</text>
  <text start="bad" dur="1">skipped</text>
</transcript>`
	cues := parseTTML([]byte(doc))
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2: %+v", len(cues), cues)
	}
	if cues[0].Start != 10.5 || cues[0].End != 12.5 {
		t.Errorf("cue 0 times = %v..%v, want 10.5..12.5", cues[0].Start, cues[0].End)
	}
	if cues[1].Text != "Tom & Jerry 'classic'" {
		t.Errorf("cue 1 text = %q, want entities unescaped", cues[1].Text)
	}
}

func TestParseTTMLParagraphSpans(t *testing.T) {
	doc := `<timedtext format="3"><body>
<p t="0" d="2500"><s>never</s><s> gonna</s></p>
<p t="2500" d="1500">give you up</p>
<p t="4000"></p>
</body></timedtext>`
	cues := parseTTML([]byte(doc))
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2: %+v", len(cues), cues)
	}
	if cues[0].Text != "never gonna" {
		t.Errorf("cue 0 text = %q", cues[0].Text)
	}
	if cues[0].Start != 0 || cues[0].End != 2.5 {
		t.Errorf("cue 0 times = %v..%v, want 0..2.5", cues[0].Start, cues[0].End)
	}
	if cues[1].Text != "give you up" {
		t.Errorf("cue 1 text = %q", cues[1].Text)
	}
}

func TestParserInvariants(t *testing.T) {
	all := [][]Cue{
		parseVTT(sampleVTT),
		parseJSON3([]byte(`{"events":[{"t":100,"d":900,"segs":[{"utf8":"a"}]},{"t":-5,"d":10,"segs":[{"utf8":"b"}]}]}`)),
		parseTTML([]byte(`<transcript><text start="1" dur="2">x</text></transcript>`)),
	}
	for i, cues := range all {
		for j, cue := range cues {
			if cue.Start < 0 {
				t.Errorf("parser %d cue %d: start %v < 0", i, j, cue.Start)
			}
			if cue.End < cue.Start {
				t.Errorf("parser %d cue %d: end %v < start %v", i, j, cue.End, cue.Start)
			}
			if strings.TrimSpace(cue.Text) == "" {
				t.Errorf("parser %d cue %d: empty text", i, j)
			}
		}
	}
}
