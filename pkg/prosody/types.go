// Package prosody extracts acoustic prosodic features from a recorded
// utterance: pitch, loudness, silence, and pauses, summarised against
// speaker-relative session baselines.
//
// The analyzer slices mono 16-bit PCM into fixed-stride overlapping windows
// (50 ms window, 25 ms hop by default), estimates per-window fundamental
// frequency with a YIN-family autocorrelation estimator, measures RMS energy
// in dB full scale, and derives per-window deltas against median session
// baselines. Runs of silent windows longer than a minimum duration become
// pause events.
//
// A [Result] is produced exactly once per utterance and is read-only
// thereafter; the hesitation, emotion, and formatting analyzers all consume
// the same result concurrently without synchronisation.
package prosody

import "time"

// Window is one fixed-duration analysis slice of the utterance. Consecutive
// windows are spaced by the hop duration and overlap in time by design.
type Window struct {
	// Start and End bound the window on the utterance timeline.
	Start time.Duration
	End   time.Duration

	// Pitch is the estimated fundamental frequency in Hz. 0 means unvoiced
	// or silent; non-zero values lie within the configured speech range.
	Pitch float64

	// PitchDelta is the pitch deviation from the session baseline,
	// normalised by the baseline and clamped to [-1, 1]. 0 when the window
	// is unvoiced or no baseline exists.
	PitchDelta float64

	// Energy is the window RMS energy in dB relative to full scale.
	// Floored at -100 dB for digital silence.
	Energy float64

	// EnergyDelta is Energy minus the session baseline energy, in dB.
	EnergyDelta float64

	// Silent marks windows below the silence energy threshold.
	Silent bool

	// Whisper marks voiced windows whose energy sits below the whisper
	// threshold: pitched speech at unusually low loudness.
	Whisper bool
}

// Pause is a contiguous run of silent windows whose span meets the minimum
// pause duration.
type Pause struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of the pause.
func (p Pause) Duration() time.Duration { return p.End - p.Start }

// Result is the complete prosodic profile of one recorded utterance.
// Immutable once returned by [Analyzer.Analyze].
type Result struct {
	// Windows is the time-ascending window sequence, evenly spaced by the
	// hop duration.
	Windows []Window

	// Pauses is the time-ascending list of detected pauses.
	Pauses []Pause

	// BaselinePitch is the median pitch in Hz over all voiced, non-silent
	// windows. 0 when no such window exists.
	BaselinePitch float64

	// BaselineEnergy is the median energy in dB over all voiced, non-silent
	// windows. 0 when no such window exists.
	BaselineEnergy float64
}

// Overlapping returns the windows whose time span intersects [start, end).
// Windows are time-ascending, so the scan stops at the first window past end.
func (r *Result) Overlapping(start, end time.Duration) []Window {
	var out []Window
	for _, w := range r.Windows {
		if w.Start >= end {
			break
		}
		if w.End > start {
			out = append(out, w)
		}
	}
	return out
}

// NonSilentOverlapping returns the non-silent windows intersecting [start, end).
func (r *Result) NonSilentOverlapping(start, end time.Duration) []Window {
	var out []Window
	for _, w := range r.Overlapping(start, end) {
		if !w.Silent {
			out = append(out, w)
		}
	}
	return out
}

// PauseNear returns the first pause whose span, widened by tol on both sides,
// contains the instant t.
func (r *Result) PauseNear(t, tol time.Duration) (Pause, bool) {
	for _, p := range r.Pauses {
		if t >= p.Start-tol && t <= p.End+tol {
			return p, true
		}
	}
	return Pause{}, false
}
