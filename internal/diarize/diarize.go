// Package diarize normalizes free-text speaker diarization output from
// generative transcription models into an ordered list of speaker segments.
package diarize

import (
	"regexp"
	"strings"
)

// Segment is one speaker-attributed span of transcript text.
// Start and End are in seconds; nil means the source text carried no usable
// timestamp. End is always inferred from the following segment, never from
// the segment's own content.
type Segment struct {
	Speaker string   `json:"speaker"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Text    string   `json:"text"`
}

// marker is one recognizable speaker-label surface form. Patterns are tried
// in order; the first match on a line wins regardless of match position.
type marker struct {
	re      *regexp.Regexp
	hasTime bool
}

// Models emit speaker labels in several surface forms depending on mood:
// bracketed, bolded, or plain, with or without a timestamp. Most specific
// forms first so "[Speaker A, 0:00]" is not half-matched by "[Speaker A]".
var markers = []marker{
	{regexp.MustCompile(`\[Speaker\s+([A-Z]),?\s*(\d{1,2}:\d{2}(?::\d{2})?)\]`), true},  // [Speaker A, 0:00]
	{regexp.MustCompile(`\*\*Speaker\s+([A-Z])\s*\((\d{1,2}:\d{2}(?::\d{2})?)\):\*\*`), true}, // **Speaker A (0:00):**
	{regexp.MustCompile(`Speaker\s+([A-Z])\s*\((\d{1,2}:\d{2}(?::\d{2})?)\):`), true}, // Speaker A (0:00):
	{regexp.MustCompile(`\[Speaker\s+([A-Z])\]`), false},      // [Speaker A]
	{regexp.MustCompile(`\*\*Speaker\s+([A-Z]):\*\*`), false}, // **Speaker A:**
	{regexp.MustCompile(`Speaker\s+([A-Z]):`), false},         // Speaker A:
}

// Normalize parses raw model output into ordered speaker segments.
//
// Lines with a recognized marker open a new segment; unmarked lines continue
// the open segment's text; unmarked lines before any marker are dropped.
// Adjacent segments with the same speaker are merged, then each segment's end
// time is inferred from the next segment's start. An empty result means no
// diarization was recognized anywhere; callers fall back to the raw text.
func Normalize(raw string) []Segment {
	var (
		segs    []Segment
		open    bool
		speaker string
		start   *float64
		buf     []string
	)

	closeOpen := func() {
		if open && len(buf) > 0 {
			segs = append(segs, Segment{
				Speaker: speaker,
				Start:   start,
				Text:    strings.TrimSpace(strings.Join(buf, " ")),
			})
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matched := false
		for _, m := range markers {
			sm := m.re.FindStringSubmatch(line)
			if sm == nil {
				continue
			}
			closeOpen()
			open = true
			speaker = "Speaker " + sm[1]
			start = nil
			if m.hasTime {
				start = ParseClock(sm[2])
			}
			rest := strings.TrimSpace(m.re.ReplaceAllString(line, ""))
			buf = buf[:0]
			if rest != "" {
				buf = append(buf, rest)
			}
			matched = true
			break
		}
		if !matched && open {
			buf = append(buf, line)
		}
	}
	closeOpen()

	return inferEndTimes(merge(segs))
}

// merge collapses adjacent segments with an identical speaker label.
// Models sometimes emit one marker per sentence despite instruction; the
// merge pass is the backstop that keeps one segment per speaker turn.
func merge(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].Speaker == s.Speaker {
			out[n-1].Text += " " + s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

// inferEndTimes sets each segment's end to the next segment's start when that
// start is known. The last segment's end stays nil.
func inferEndTimes(segs []Segment) []Segment {
	for i := 0; i+1 < len(segs); i++ {
		if segs[i+1].Start != nil {
			end := *segs[i+1].Start
			segs[i].End = &end
		}
	}
	return segs
}
