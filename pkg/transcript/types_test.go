package transcript

import (
	"testing"
	"time"
)

func TestSegmentDuration(t *testing.T) {
	t.Parallel()

	s := Segment{Start: time.Second, End: 3 * time.Second}
	if got := s.Duration(); got != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", got)
	}

	// Inverted timestamps clamp to zero rather than going negative.
	inv := Segment{Start: 2 * time.Second, End: time.Second}
	if got := inv.Duration(); got != 0 {
		t.Errorf("inverted Duration = %v, want 0", got)
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"two  words", 2},
		{" leading and trailing ", 3},
	}
	for _, tt := range tests {
		if got := (Segment{Text: tt.text}).WordCount(); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestSpanAndWords(t *testing.T) {
	t.Parallel()

	segs := []Segment{
		{Text: "hello there", Start: 500 * time.Millisecond, End: time.Second},
		{Text: "general kenobi", Start: time.Second, End: 2 * time.Second},
	}
	start, end := Span(segs)
	if start != 500*time.Millisecond || end != 2*time.Second {
		t.Errorf("Span = %v..%v, want 500ms..2s", start, end)
	}
	if got := Words(segs); got != 4 {
		t.Errorf("Words = %d, want 4", got)
	}

	start, end = Span(nil)
	if start != 0 || end != 0 {
		t.Errorf("Span(nil) = %v..%v, want zeros", start, end)
	}
}
