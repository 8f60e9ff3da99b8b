package prosody

import (
	"math"
	"testing"
)

// sineFrame generates n samples of a pure tone at freq Hz.
func sineFrame(freq float64, n, sampleRate int, amp float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestYinPitch_PureTones(t *testing.T) {
	t.Parallel()

	const (
		sampleRate = 16000
		frameLen   = 800 // 50 ms
	)

	tests := []struct {
		name string
		freq float64
	}{
		{"200hz_integer_lag", 200},
		{"185hz_fractional_lag", 185},
		{"330hz", 330},
		{"90hz_low_male", 90},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frame := sineFrame(tt.freq, frameLen, sampleRate, 0.5)
			got := yinPitch(frame, sampleRate, 60, 500, 0.15)
			if got == 0 {
				t.Fatalf("yinPitch returned unvoiced for %gHz tone", tt.freq)
			}
			if rel := math.Abs(got-tt.freq) / tt.freq; rel > 0.02 {
				t.Errorf("yinPitch = %.2fHz, want %gHz +/-2%%", got, tt.freq)
			}
		})
	}
}

func TestYinPitch_UnvoicedInputs(t *testing.T) {
	t.Parallel()

	const sampleRate = 16000

	t.Run("all_zeros", func(t *testing.T) {
		t.Parallel()
		if got := yinPitch(make([]float64, 800), sampleRate, 60, 500, 0.15); got != 0 {
			t.Errorf("yinPitch(zeros) = %v, want 0", got)
		}
	})

	t.Run("constant_dc", func(t *testing.T) {
		t.Parallel()
		frame := make([]float64, 800)
		for i := range frame {
			frame[i] = 0.3
		}
		if got := yinPitch(frame, sampleRate, 60, 500, 0.15); got != 0 {
			t.Errorf("yinPitch(dc) = %v, want 0", got)
		}
	})

	t.Run("tone_outside_range", func(t *testing.T) {
		t.Parallel()
		// 800 Hz is above the configured speech ceiling. The estimator may
		// lock onto the true lag or a subharmonic inside the range; only the
		// true frequency must not be reported as-is when out of range.
		frame := sineFrame(800, 800, sampleRate, 0.5)
		got := yinPitch(frame, sampleRate, 60, 500, 0.15)
		if got > 500 || got < 0 {
			t.Errorf("yinPitch = %v, want result within [0, 500]", got)
		}
	})

	t.Run("degenerate_config", func(t *testing.T) {
		t.Parallel()
		frame := sineFrame(200, 800, sampleRate, 0.5)
		if got := yinPitch(frame, 0, 60, 500, 0.15); got != 0 {
			t.Errorf("yinPitch with zero sample rate = %v, want 0", got)
		}
		if got := yinPitch(frame, sampleRate, 500, 60, 0.15); got != 0 {
			t.Errorf("yinPitch with inverted range = %v, want 0", got)
		}
	})
}

func TestRefineLag_EdgeCases(t *testing.T) {
	t.Parallel()

	cmnd := []float64{1, 0.5, 0.1, 0.5, 1}
	if got := refineLag(cmnd, 2); got != 2 {
		// Symmetric neighbours: the parabola vertex sits exactly on the lag.
		t.Errorf("refineLag(symmetric) = %v, want 2", got)
	}
	if got := refineLag(cmnd, 0); got != 0 {
		t.Errorf("refineLag at left edge = %v, want 0", got)
	}
	if got := refineLag(cmnd, 4); got != 4 {
		t.Errorf("refineLag at right edge = %v, want 4", got)
	}

	asym := []float64{1, 0.4, 0.1, 0.3, 1}
	got := refineLag(asym, 2)
	if got <= 1.5 || got >= 2.5 {
		t.Errorf("refineLag(asymmetric) = %v, want within half a lag of 2", got)
	}
}
