// Package transcript defines the timestamped transcript types consumed by the
// analysis pipeline. Segments are supplied by an external transcription
// client and share a timeline with the prosody result: both count from the
// start of the recorded utterance.
package transcript

import (
	"strings"
	"time"
)

// Segment is one transcribed span of speech with its position on the
// utterance timeline.
type Segment struct {
	// Text is the transcribed content of this span.
	Text string

	// Start is the offset of the span from the start of the recording.
	Start time.Duration

	// End is the offset at which the span ends. End >= Start.
	End time.Duration
}

// Duration returns the length of the segment on the timeline.
func (s Segment) Duration() time.Duration {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// WordCount returns the number of whitespace-separated tokens in the segment.
func (s Segment) WordCount() int {
	return len(strings.Fields(s.Text))
}

// Span returns the overall time span covered by an ordered segment list:
// first segment start to last segment end. Returns zeros for an empty list.
func Span(segs []Segment) (start, end time.Duration) {
	if len(segs) == 0 {
		return 0, 0
	}
	return segs[0].Start, segs[len(segs)-1].End
}

// Words returns the total whitespace-separated token count across segs.
func Words(segs []Segment) int {
	total := 0
	for _, s := range segs {
		total += s.WordCount()
	}
	return total
}
