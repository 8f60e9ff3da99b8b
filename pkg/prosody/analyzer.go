package prosody

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dacasine/Dictate-windows-sub000/pkg/audio"
)

// Sentinel errors returned by [Analyzer.Analyze]. A cancelled analysis wraps
// [context.Canceled] (or [context.DeadlineExceeded]) and is distinguishable
// from format failures via errors.Is.
var (
	// ErrEmptyBuffer is returned for a zero-length audio buffer.
	ErrEmptyBuffer = errors.New("prosody: empty audio buffer")

	// ErrUnsupportedFormat is returned for audio that is not mono 16-bit PCM.
	ErrUnsupportedFormat = errors.New("prosody: unsupported audio format (want mono 16-bit PCM)")

	// ErrBufferTooShort is returned when the buffer holds less than one
	// analysis window.
	ErrBufferTooShort = errors.New("prosody: buffer shorter than one analysis window")
)

// Config holds the analysis parameters. The zero value is not usable; start
// from [DefaultConfig].
type Config struct {
	// Window is the duration of each analysis window.
	Window time.Duration

	// Hop is the stride between consecutive window starts. Hop <= Window.
	Hop time.Duration

	// PitchMinHz and PitchMaxHz bound the speech pitch search range.
	PitchMinHz float64
	PitchMaxHz float64

	// YinThreshold is the CMND dip threshold below which a lag is accepted
	// as a pitch candidate.
	YinThreshold float64

	// SilenceThresholdDB marks windows below this energy as silent.
	SilenceThresholdDB float64

	// WhisperThresholdDB marks voiced windows below this energy as whispered.
	WhisperThresholdDB float64

	// MinPause is the minimum silent-run span reported as a pause event.
	MinPause time.Duration
}

// DefaultConfig returns the standard analysis parameters: 50 ms windows at a
// 25 ms hop, a 60-500 Hz pitch range, -40 dB silence and -28 dB whisper
// thresholds, and a 200 ms minimum pause.
func DefaultConfig() Config {
	return Config{
		Window:             50 * time.Millisecond,
		Hop:                25 * time.Millisecond,
		PitchMinHz:         60,
		PitchMaxHz:         500,
		YinThreshold:       0.15,
		SilenceThresholdDB: -40,
		WhisperThresholdDB: -28,
		MinPause:           200 * time.Millisecond,
	}
}

// Option is a functional option for configuring an [Analyzer].
type Option func(*Analyzer)

// WithConfig replaces the entire analysis configuration.
func WithConfig(cfg Config) Option {
	return func(a *Analyzer) { a.cfg = cfg }
}

// WithPitchRange overrides the speech pitch search range in Hz.
func WithPitchRange(minHz, maxHz float64) Option {
	return func(a *Analyzer) {
		a.cfg.PitchMinHz = minHz
		a.cfg.PitchMaxHz = maxHz
	}
}

// WithMinPause overrides the minimum reported pause duration.
func WithMinPause(d time.Duration) Option {
	return func(a *Analyzer) { a.cfg.MinPause = d }
}

// Analyzer converts raw PCM into a prosody [Result]. It is stateless and
// safe for concurrent use; one Analyzer can serve many utterances.
type Analyzer struct {
	cfg Config
}

// New returns an [Analyzer] configured with the supplied options, starting
// from [DefaultConfig].
func New(opts ...Option) *Analyzer {
	a := &Analyzer{cfg: DefaultConfig()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// rawWindow holds the first-phase features of a window, before session
// baselines are known.
type rawWindow struct {
	start, end time.Duration
	pitch      float64
	energy     float64
	silent     bool
}

// Analyze produces the prosodic profile of buf.
//
// The buffer must be mono 16-bit PCM with a positive sample rate and at
// least one full analysis window of samples; otherwise a format error is
// returned. Cancellation is checked at every window boundary — the inner
// pitch search is quadratic in window length times lag range, so callers
// should run Analyze off any latency-sensitive goroutine and cancel via ctx.
// A cancelled run returns an error wrapping ctx.Err(), never a partial
// Result.
func (a *Analyzer) Analyze(ctx context.Context, buf audio.Buffer) (*Result, error) {
	if buf.Channels != 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, buf.Channels)
	}
	if buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, buf.SampleRate)
	}
	if len(buf.Data) == 0 {
		return nil, ErrEmptyBuffer
	}
	if len(buf.Data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte count %d", ErrUnsupportedFormat, len(buf.Data))
	}

	samples := buf.Floats()
	winSamples := int(a.cfg.Window * time.Duration(buf.SampleRate) / time.Second)
	hopSamples := int(a.cfg.Hop * time.Duration(buf.SampleRate) / time.Second)
	if winSamples <= 0 || hopSamples <= 0 {
		return nil, fmt.Errorf("prosody: invalid config: window %v hop %v", a.cfg.Window, a.cfg.Hop)
	}
	if len(samples) < winSamples {
		return nil, fmt.Errorf("%w: %d samples, need %d", ErrBufferTooShort, len(samples), winSamples)
	}

	// Phase 1: raw per-window features. The trailing partial window is dropped.
	var raw []rawWindow
	for offset := 0; offset+winSamples <= len(samples); offset += hopSamples {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("prosody: analysis cancelled: %w", err)
		}
		frame := samples[offset : offset+winSamples]
		energy := energyDB(frame)
		silent := energy < a.cfg.SilenceThresholdDB

		var pitch float64
		if !silent {
			pitch = yinPitch(frame, buf.SampleRate, a.cfg.PitchMinHz, a.cfg.PitchMaxHz, a.cfg.YinThreshold)
		}

		raw = append(raw, rawWindow{
			start:  sampleTime(offset, buf.SampleRate),
			end:    sampleTime(offset+winSamples, buf.SampleRate),
			pitch:  pitch,
			energy: energy,
			silent: silent,
		})
	}

	basePitch, baseEnergy := baselines(raw)

	// Phase 2: derive the published windows with deltas attached.
	windows := make([]Window, len(raw))
	for i, rw := range raw {
		w := Window{
			Start:   rw.start,
			End:     rw.end,
			Pitch:   rw.pitch,
			Energy:  rw.energy,
			Silent:  rw.silent,
			Whisper: rw.pitch > 0 && rw.energy < a.cfg.WhisperThresholdDB,
		}
		if basePitch > 0 && rw.pitch > 0 {
			w.PitchDelta = clamp((rw.pitch-basePitch)/basePitch, -1, 1)
		}
		w.EnergyDelta = rw.energy - baseEnergy
		windows[i] = w
	}

	return &Result{
		Windows:        windows,
		Pauses:         detectPauses(raw, a.cfg.MinPause),
		BaselinePitch:  basePitch,
		BaselineEnergy: baseEnergy,
	}, nil
}

// energyDB returns the RMS energy of normalised samples in dB full scale,
// floored at -100 dB for digital silence.
func energyDB(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms < 1e-10 {
		return -100
	}
	return 20 * math.Log10(rms)
}

// baselines computes the median pitch and energy over voiced, non-silent
// windows. Both are 0 when no such window exists.
func baselines(raw []rawWindow) (pitch, energy float64) {
	var pitches, energies []float64
	for _, rw := range raw {
		if rw.silent || rw.pitch <= 0 {
			continue
		}
		pitches = append(pitches, rw.pitch)
		energies = append(energies, rw.energy)
	}
	if len(pitches) == 0 {
		return 0, 0
	}
	return median(pitches), median(energies)
}

// detectPauses scans the raw window sequence for silent runs spanning at
// least minPause. A run still open at the end of the buffer is also emitted.
func detectPauses(raw []rawWindow, minPause time.Duration) []Pause {
	var pauses []Pause
	runStart := time.Duration(-1)
	var runEnd time.Duration

	flush := func() {
		if runStart >= 0 && runEnd-runStart >= minPause {
			pauses = append(pauses, Pause{Start: runStart, End: runEnd})
		}
		runStart = -1
	}

	for _, rw := range raw {
		if rw.silent {
			if runStart < 0 {
				runStart = rw.start
			}
			runEnd = rw.end
			continue
		}
		flush()
	}
	flush()
	return pauses
}

func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func sampleTime(sample, rate int) time.Duration {
	return time.Duration(sample) * time.Second / time.Duration(rate)
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
