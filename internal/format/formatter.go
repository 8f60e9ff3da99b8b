// Package format rewrites a transcript using its prosodic profile: loud
// segments gain bold markers, whispered or very quiet segments italics,
// rising or falling end pitch infers terminal punctuation, and pauses between
// segments become line or paragraph breaks.
//
// The formatter is a best-effort enricher: when segments are absent or no
// prosody result is available, the input text is returned unchanged.
package format

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dacasine/Dictate-windows-sub000/pkg/prosody"
	"github.com/dacasine/Dictate-windows-sub000/pkg/transcript"
)

// Config holds the formatting thresholds.
type Config struct {
	// BoldEnergyDB: mean energy delta above which a segment is bolded.
	BoldEnergyDB float64

	// ItalicEnergyDB: mean energy delta below which a segment is
	// italicised (when not already bold).
	ItalicEnergyDB float64

	// QuestionPitchDelta: end-pitch delta above which a '?' is inferred.
	QuestionPitchDelta float64

	// ExclaimPitchDelta and ExclaimEnergyDB: a '!' is inferred when the end
	// pitch falls below the former while mean energy exceeds the latter.
	ExclaimPitchDelta float64
	ExclaimEnergyDB   float64

	// EndWindow bounds the segment-final region considered for end pitch.
	EndWindow time.Duration

	// ParagraphPause and LinePause are the minimum pause durations rendered
	// as a paragraph break and a line break respectively.
	ParagraphPause time.Duration
	LinePause      time.Duration

	// PauseTolerance is the slack allowed when matching a pause event to
	// the gap between two segments.
	PauseTolerance time.Duration
}

// DefaultConfig returns the standard formatting thresholds.
func DefaultConfig() Config {
	return Config{
		BoldEnergyDB:       6,
		ItalicEnergyDB:     -8,
		QuestionPitchDelta: 0.15,
		ExclaimPitchDelta:  -0.10,
		ExclaimEnergyDB:    3,
		EndWindow:          300 * time.Millisecond,
		ParagraphPause:     1500 * time.Millisecond,
		LinePause:          500 * time.Millisecond,
		PauseTolerance:     100 * time.Millisecond,
	}
}

// Option is a functional option for configuring a [Formatter].
type Option func(*Formatter)

// WithConfig replaces the formatting configuration.
func WithConfig(cfg Config) Option {
	return func(f *Formatter) { f.cfg = cfg }
}

// Formatter rewrites transcript text from prosodic cues. Stateless and safe
// for concurrent use.
type Formatter struct {
	cfg Config
}

// New returns a [Formatter] configured with the supplied options.
func New(opts ...Option) *Formatter {
	f := &Formatter{cfg: DefaultConfig()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Format rewrites text from its segments and prosodic profile. Returns text
// unchanged when segs is empty or pros is nil.
func (f *Formatter) Format(text string, segs []transcript.Segment, pros *prosody.Result) string {
	if len(segs) == 0 || pros == nil {
		return text
	}

	var b strings.Builder
	var rendered string
	for i, seg := range segs {
		if i > 0 {
			sep := f.separator(segs[i-1], seg, pros)
			if sep != " " || needsSpace(rendered, seg.Text) {
				b.WriteString(sep)
			}
		}
		rendered = f.renderSegment(seg, pros)
		b.WriteString(rendered)
	}
	return b.String()
}

// renderSegment applies emphasis and inferred punctuation to one segment.
// Segments with no overlapping non-silent windows pass through as-is.
func (f *Formatter) renderSegment(seg transcript.Segment, pros *prosody.Result) string {
	ws := pros.NonSilentOverlapping(seg.Start, seg.End)
	if len(ws) == 0 {
		return seg.Text
	}

	meanEnergy := meanEnergyDelta(ws)
	whisper := allWhisper(ws)
	endPitch := f.endPitchDelta(ws, seg.End)

	lead, token, trail := splitSurroundingSpace(seg.Text)
	if token == "" {
		return seg.Text
	}

	if !endsInPunctuation(token) {
		switch {
		case endPitch > f.cfg.QuestionPitchDelta:
			token += "?"
		case endPitch < f.cfg.ExclaimPitchDelta && meanEnergy > f.cfg.ExclaimEnergyDB:
			token += "!"
		}
	}

	// Bold wins over italic; the two are mutually exclusive.
	switch {
	case meanEnergy > f.cfg.BoldEnergyDB:
		token = "**" + token + "**"
	case whisper || meanEnergy < f.cfg.ItalicEnergyDB:
		token = "*" + token + "*"
	}

	return lead + token + trail
}

// endPitchDelta averages the pitch delta of windows ending within the
// segment-final EndWindow region.
func (f *Formatter) endPitchDelta(ws []prosody.Window, segEnd time.Duration) float64 {
	var sum float64
	n := 0
	for _, w := range ws {
		if w.End >= segEnd-f.cfg.EndWindow && w.End <= segEnd {
			sum += w.PitchDelta
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// separator picks the joiner between two adjacent segments from any pause
// event coinciding with their gap.
func (f *Formatter) separator(prev, next transcript.Segment, pros *prosody.Result) string {
	tol := f.cfg.PauseTolerance
	for _, p := range pros.Pauses {
		if p.Start < prev.End-tol || p.End > next.Start+tol {
			continue
		}
		switch d := p.Duration(); {
		case d >= f.cfg.ParagraphPause:
			return "\n\n"
		case d >= f.cfg.LinePause:
			return "\n"
		}
		break
	}
	return " "
}

// needsSpace reports whether joining prev and next with a plain space is
// required, i.e. neither side already carries boundary whitespace.
func needsSpace(prev, next string) bool {
	if prev == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(prev)
	if unicode.IsSpace(r) {
		return false
	}
	r, size := utf8.DecodeRuneInString(next)
	if size > 0 && unicode.IsSpace(r) {
		return false
	}
	return true
}

// splitSurroundingSpace splits s into its leading whitespace, trimmed core,
// and trailing whitespace, so emphasis markers can hug the core.
func splitSurroundingSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

func endsInPunctuation(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsPunct(r)
}

func allWhisper(ws []prosody.Window) bool {
	for _, w := range ws {
		if !w.Whisper {
			return false
		}
	}
	return true
}

func meanEnergyDelta(ws []prosody.Window) float64 {
	var sum float64
	for _, w := range ws {
		sum += w.EnergyDelta
	}
	return sum / float64(len(ws))
}
