// Package emotion classifies the emotional tone of a transcribed utterance
// from its prosodic profile: one discrete tag with confidence per transcript
// segment, plus session-level valence/arousal aggregates on a dimensional
// emotion model.
//
// Classification is fully deterministic: an ordered list of threshold rules
// is evaluated per segment and the first match wins. No lexical content is
// inspected — only pitch and energy statistics of the prosody windows
// overlapping each segment.
package emotion

import (
	"math"
	"time"

	"github.com/dacasine/Dictate-windows-sub000/pkg/prosody"
	"github.com/dacasine/Dictate-windows-sub000/pkg/transcript"
)

// Tag is a discrete emotion label.
type Tag string

const (
	Neutral   Tag = "neutral"
	Calm      Tag = "calm"
	Confident Tag = "confident"
	Excited   Tag = "excited"
	Uncertain Tag = "uncertain"
	Sad       Tag = "sad"
	Stressed  Tag = "stressed"
	Angry     Tag = "angry"
)

// tagOrder fixes the iteration order for session aggregation so that
// dominant-tag ties resolve deterministically.
var tagOrder = []Tag{Neutral, Calm, Confident, Excited, Uncertain, Sad, Stressed, Angry}

// affectBase holds the fixed valence/arousal coordinates of a tag on the
// dimensional emotion model.
type affectBase struct {
	valence float64 // [-1, 1]
	arousal float64 // [0, 1]
}

var affectBases = map[Tag]affectBase{
	Excited:   {0.7, 0.85},
	Confident: {0.5, 0.5},
	Calm:      {0.3, 0.15},
	Neutral:   {0, 0.3},
	Uncertain: {-0.3, 0.4},
	Sad:       {-0.6, 0.2},
	Stressed:  {-0.5, 0.8},
	Angry:     {-0.8, 0.9},
}

// Segment is the classification of one transcript segment.
type Segment struct {
	// Start and End mirror the transcript segment's span.
	Start time.Duration
	End   time.Duration

	Tag        Tag
	Confidence float64
}

// Result is the emotional profile of one utterance. Immutable once returned.
type Result struct {
	// Segments aligns 1:1 with the input transcript segments (or holds a
	// single neutral entry on degenerate input).
	Segments []Segment

	// Dominant is the tag with the highest summed confidence across
	// segments; DominantConfidence is that sum divided by the segment count.
	Dominant           Tag
	DominantConfidence float64

	// Valence [-1, 1] and Arousal [0, 1] are confidence-weighted means over
	// the per-tag base coordinates.
	Valence float64
	Arousal float64

	// Warn is set with WarningMessage when the session is dominated by
	// high-confidence anger or stress.
	Warn           bool
	WarningMessage string
}

const (
	warnAngryMessage    = "Sustained anger detected across this session."
	warnStressedMessage = "Elevated stress detected across this session."

	neutralDegenerateConfidence = 0.5
	neutralNoWindowsConfidence  = 0.3
	neutralFallbackConfidence   = 0.4
)

// Option is a functional option for configuring an [Analyzer].
type Option func(*Analyzer)

// WithThresholds replaces the decision constants. Missing (zero) fields are
// not defaulted; callers should start from [DefaultThresholds].
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) { a.thresholds = t }
}

// Analyzer classifies per-segment emotion. Stateless and safe for concurrent
// use; the rule list is materialised once at construction.
type Analyzer struct {
	thresholds Thresholds
	rules      []rule
}

// New returns an [Analyzer] configured with the supplied options, starting
// from [DefaultThresholds].
func New(opts ...Option) *Analyzer {
	a := &Analyzer{thresholds: DefaultThresholds()}
	for _, o := range opts {
		o(a)
	}
	a.rules = a.thresholds.rules()
	return a
}

// Analyze classifies each transcript segment against the prosody result and
// aggregates the session profile. Missing segments or a missing prosody
// result yields a single neutral classification at confidence 0.5 — never an
// error.
func (a *Analyzer) Analyze(segs []transcript.Segment, pros *prosody.Result) Result {
	if len(segs) == 0 || pros == nil {
		return a.aggregate([]Segment{{Tag: Neutral, Confidence: neutralDegenerateConfidence}})
	}

	out := make([]Segment, len(segs))
	for i, seg := range segs {
		es := Segment{Start: seg.Start, End: seg.End, Tag: Neutral, Confidence: neutralNoWindowsConfidence}
		if ws := pros.NonSilentOverlapping(seg.Start, seg.End); len(ws) > 0 {
			es.Tag, es.Confidence = a.classify(extractFeatures(ws))
		}
		out[i] = es
	}
	return a.aggregate(out)
}

// classify runs the ordered rule list; the first matching rule wins.
func (a *Analyzer) classify(f features) (Tag, float64) {
	for _, r := range a.rules {
		if r.match(f) {
			return r.tag, r.confidence(f)
		}
	}
	return Neutral, neutralFallbackConfidence
}

// extractFeatures summarises the pitch/energy statistics of a window set.
func extractFeatures(ws []prosody.Window) features {
	n := float64(len(ws))

	var energySum, pitchSum float64
	for _, w := range ws {
		energySum += w.EnergyDelta
		pitchSum += w.PitchDelta
	}
	f := features{
		energyDelta: energySum / n,
		pitchDelta:  pitchSum / n,
	}

	var variance float64
	for _, w := range ws {
		d := w.PitchDelta - f.pitchDelta
		variance += d * d
	}
	f.pitchStd = math.Sqrt(variance / n)

	// Trend needs at least 3 windows to split meaningfully.
	if len(ws) >= 3 {
		half := len(ws) / 2
		f.pitchTrend = meanPitchDelta(ws[half:]) - meanPitchDelta(ws[:half])
	}
	return f
}

// aggregate derives the session-level profile from per-segment
// classifications.
func (a *Analyzer) aggregate(segments []Segment) Result {
	sums := make(map[Tag]float64, len(tagOrder))
	var confTotal, valenceSum, arousalSum float64
	for _, s := range segments {
		sums[s.Tag] += s.Confidence
		confTotal += s.Confidence
		base := affectBases[s.Tag]
		valenceSum += s.Confidence * base.valence
		arousalSum += s.Confidence * base.arousal
	}

	res := Result{Segments: segments, Dominant: Neutral}
	var best float64 = -1
	for _, tag := range tagOrder {
		if sum, ok := sums[tag]; ok && sum > best {
			best = sum
			res.Dominant = tag
		}
	}
	res.DominantConfidence = best / float64(len(segments))

	if confTotal > 0 {
		res.Valence = clamp(valenceSum/confTotal, -1, 1)
		res.Arousal = clamp(arousalSum/confTotal, 0, 1)
	}

	switch {
	case res.Dominant == Angry && res.DominantConfidence > a.thresholds.WarnAngryConfidence:
		res.Warn = true
		res.WarningMessage = warnAngryMessage
	case res.Dominant == Stressed && res.DominantConfidence > a.thresholds.WarnStressedConfidence:
		res.Warn = true
		res.WarningMessage = warnStressedMessage
	}
	return res
}

func meanPitchDelta(ws []prosody.Window) float64 {
	var sum float64
	for _, w := range ws {
		sum += w.PitchDelta
	}
	return sum / float64(len(ws))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
