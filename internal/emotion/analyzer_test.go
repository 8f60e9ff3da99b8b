package emotion

import (
	"math"
	"testing"
	"time"

	"github.com/dacasine/Dictate-windows-sub000/pkg/prosody"
	"github.com/dacasine/Dictate-windows-sub000/pkg/transcript"
)

// windowSeq builds count 500ms windows starting at t0, applying fn to each.
func windowSeq(t0 time.Duration, count int, fn func(i int, w *prosody.Window)) []prosody.Window {
	const step = 500 * time.Millisecond
	ws := make([]prosody.Window, count)
	for i := 0; i < count; i++ {
		ws[i] = prosody.Window{Start: t0 + time.Duration(i)*step, End: t0 + time.Duration(i+1)*step}
		if fn != nil {
			fn(i, &ws[i])
		}
	}
	return ws
}

func oneSegment(end time.Duration) []transcript.Segment {
	return []transcript.Segment{{Text: "segment", Start: 0, End: end}}
}

func TestAnalyze_DegenerateInputs(t *testing.T) {
	t.Parallel()

	a := New()

	for name, res := range map[string]Result{
		"no_segments": a.Analyze(nil, &prosody.Result{}),
		"no_prosody":  a.Analyze(oneSegment(time.Second), nil),
	} {
		if len(res.Segments) != 1 {
			t.Errorf("%s: %d segments, want 1", name, len(res.Segments))
			continue
		}
		if res.Segments[0].Tag != Neutral || res.Segments[0].Confidence != 0.5 {
			t.Errorf("%s: got %s@%v, want neutral@0.5", name, res.Segments[0].Tag, res.Segments[0].Confidence)
		}
		if res.Dominant != Neutral {
			t.Errorf("%s: dominant = %s, want neutral", name, res.Dominant)
		}
		if res.Warn {
			t.Errorf("%s: unexpected warning", name)
		}
	}
}

func TestAnalyze_NoOverlappingWindows(t *testing.T) {
	t.Parallel()

	// Prosody windows exist but none overlap the segment.
	pros := &prosody.Result{Windows: windowSeq(10*time.Second, 4, nil)}
	res := New().Analyze(oneSegment(time.Second), pros)

	if res.Segments[0].Tag != Neutral {
		t.Errorf("tag = %s, want neutral", res.Segments[0].Tag)
	}
	if res.Segments[0].Confidence != 0.3 {
		t.Errorf("confidence = %v, want 0.3 for no overlapping windows", res.Segments[0].Confidence)
	}
}

func TestClassify_RuleTable(t *testing.T) {
	t.Parallel()

	a := New()

	tests := []struct {
		name     string
		f        features
		wantTag  Tag
		wantConf float64
	}{
		{
			name:     "angry",
			f:        features{energyDelta: 8, pitchDelta: 0.3},
			wantTag:  Angry,
			wantConf: (8.0/10 + 0.3) * 0.8, // 0.88
		},
		{
			name:     "stressed",
			f:        features{energyDelta: 1, pitchStd: 0.3},
			wantTag:  Stressed,
			wantConf: 0.6,
		},
		{
			name:     "excited",
			f:        features{energyDelta: 5, pitchTrend: 0.2, pitchStd: 0.2},
			wantTag:  Excited,
			wantConf: (5.0/8 + 0.2) * 0.7,
		},
		{
			name:     "sad",
			f:        features{energyDelta: -9, pitchTrend: -0.1},
			wantTag:  Sad,
			wantConf: (9.0 / 12) * 0.8,
		},
		{
			name:     "uncertain",
			f:        features{energyDelta: -5, pitchStd: 0.2},
			wantTag:  Uncertain,
			wantConf: (5.0/8 + 0.2) * 0.6,
		},
		{
			name:     "confident",
			f:        features{energyDelta: 1, pitchStd: 0.02},
			wantTag:  Confident,
			wantConf: (1 - 0.02/0.08) * 0.7,
		},
		{
			name:     "calm",
			f:        features{energyDelta: -1, pitchStd: 0.1},
			wantTag:  Calm,
			wantConf: 0.5,
		},
		{
			name:     "neutral_fallback",
			f:        features{energyDelta: -1, pitchStd: 0.14},
			wantTag:  Neutral,
			wantConf: 0.4,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tag, conf := a.classify(tt.f)
			if tag != tt.wantTag {
				t.Fatalf("classify = %s, want %s", tag, tt.wantTag)
			}
			if math.Abs(conf-tt.wantConf) > 1e-9 {
				t.Errorf("confidence = %v, want %v", conf, tt.wantConf)
			}
			if conf < 0 || conf > 1 {
				t.Errorf("confidence %v outside [0,1]", conf)
			}
		})
	}
}

func TestAnalyze_AngryFromWindows(t *testing.T) {
	t.Parallel()

	// Per the rule table: +8 dB energy delta with +0.3 pitch delta is anger.
	pros := &prosody.Result{Windows: windowSeq(0, 4, func(_ int, w *prosody.Window) {
		w.EnergyDelta = 8
		w.PitchDelta = 0.3
	})}
	res := New().Analyze(oneSegment(2*time.Second), pros)

	got := res.Segments[0]
	if got.Tag != Angry {
		t.Fatalf("tag = %s, want angry", got.Tag)
	}
	if got.Confidence < 0.4 || got.Confidence > 0.95 {
		t.Errorf("confidence = %v, want within [0.4, 0.95]", got.Confidence)
	}
}

func TestAnalyze_PitchTrendRequiresThreeWindows(t *testing.T) {
	t.Parallel()

	// Two windows with rising pitch: trend must stay 0, so the excited rule
	// cannot fire even with high energy.
	ws := windowSeq(0, 2, func(i int, w *prosody.Window) {
		w.EnergyDelta = 6
		w.PitchDelta = float64(i) * 0.4
	})
	f := extractFeatures(ws)
	if f.pitchTrend != 0 {
		t.Errorf("pitchTrend = %v with 2 windows, want 0", f.pitchTrend)
	}

	ws3 := windowSeq(0, 4, func(i int, w *prosody.Window) {
		w.PitchDelta = float64(i) * 0.1
	})
	if f3 := extractFeatures(ws3); f3.pitchTrend <= 0 {
		t.Errorf("pitchTrend = %v with rising pitch, want > 0", f3.pitchTrend)
	}
}

func TestAnalyze_SessionAggregation(t *testing.T) {
	t.Parallel()

	// Three segments, all angry at high confidence: the session must be
	// dominated by anger, carry strongly negative valence and high arousal,
	// and raise the warning.
	var windows []prosody.Window
	for i := 0; i < 12; i++ {
		windows = append(windows, prosody.Window{
			Start:       time.Duration(i) * 500 * time.Millisecond,
			End:         time.Duration(i+1) * 500 * time.Millisecond,
			EnergyDelta: 8,
			PitchDelta:  0.3,
		})
	}
	segs := []transcript.Segment{
		{Text: "a", Start: 0, End: 2 * time.Second},
		{Text: "b", Start: 2 * time.Second, End: 4 * time.Second},
		{Text: "c", Start: 4 * time.Second, End: 6 * time.Second},
	}

	res := New().Analyze(segs, &prosody.Result{Windows: windows})
	if res.Dominant != Angry {
		t.Fatalf("dominant = %s, want angry", res.Dominant)
	}
	if res.DominantConfidence <= 0.6 {
		t.Errorf("dominant confidence = %v, want > 0.6", res.DominantConfidence)
	}
	if !res.Warn || res.WarningMessage == "" {
		t.Error("expected session warning for dominant anger")
	}
	if res.Valence >= 0 {
		t.Errorf("valence = %v, want negative for anger", res.Valence)
	}
	if res.Arousal <= 0.5 {
		t.Errorf("arousal = %v, want high for anger", res.Arousal)
	}
	if res.Valence < -1 || res.Valence > 1 || res.Arousal < 0 || res.Arousal > 1 {
		t.Errorf("aggregates outside ranges: valence %v arousal %v", res.Valence, res.Arousal)
	}
}

func TestAnalyze_NoWarnForCalmSession(t *testing.T) {
	t.Parallel()

	pros := &prosody.Result{Windows: windowSeq(0, 4, func(_ int, w *prosody.Window) {
		w.EnergyDelta = -1
		w.PitchDelta = 0.05
	})}
	res := New().Analyze(oneSegment(2*time.Second), pros)
	if res.Warn {
		t.Errorf("unexpected warning for %s session", res.Dominant)
	}
}

func TestAnalyze_ConfigurableThresholds(t *testing.T) {
	t.Parallel()

	// Raising the angry gates above the observed features must defeat the
	// angry rule for the same input.
	th := DefaultThresholds()
	th.AngryEnergyDB = 20
	a := New(WithThresholds(th))

	tag, _ := a.classify(features{energyDelta: 8, pitchDelta: 0.3})
	if tag == Angry {
		t.Errorf("classify = angry despite raised threshold")
	}
}
