package prosody

// yinPitch estimates the fundamental frequency of one analysis window using
// the YIN cumulative mean normalised difference (CMND) method:
//
//  1. Compute the squared-difference function d(tau) for candidate lags up to
//     maxLag.
//  2. Normalise into the CMND, defined so cmnd[0] = 1 and
//     cmnd[tau] = d(tau) * tau / sum(d(1..tau)).
//  3. Scan from the shortest valid lag for the first cmnd value below the
//     threshold, then walk forward while the CMND keeps decreasing to land on
//     the local minimum.
//  4. Refine the winning lag by parabolic interpolation over its three
//     neighbouring CMND values for sub-sample accuracy.
//
// Returns 0 when no dip below the threshold exists or when the refined
// frequency falls outside [minHz, maxHz].
func yinPitch(samples []float64, sampleRate int, minHz, maxHz, threshold float64) float64 {
	if sampleRate <= 0 || minHz <= 0 || maxHz <= minHz {
		return 0
	}
	minLag := int(float64(sampleRate) / maxHz)
	maxLag := int(float64(sampleRate) / minHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(samples) {
		maxLag = len(samples) - 1
	}
	if maxLag <= minLag {
		return 0
	}

	// Squared-difference function.
	diff := make([]float64, maxLag+1)
	for tau := 1; tau <= maxLag; tau++ {
		var sum float64
		for i := 0; i < len(samples)-tau; i++ {
			d := samples[i] - samples[i+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	// Cumulative mean normalised difference.
	cmnd := make([]float64, maxLag+1)
	cmnd[0] = 1
	var running float64
	for tau := 1; tau <= maxLag; tau++ {
		running += diff[tau]
		if running == 0 {
			cmnd[tau] = 1
		} else {
			cmnd[tau] = diff[tau] * float64(tau) / running
		}
	}

	// First dip below threshold, then descend to its local minimum.
	for tau := minLag; tau <= maxLag; tau++ {
		if cmnd[tau] >= threshold {
			continue
		}
		for tau+1 <= maxLag && cmnd[tau+1] < cmnd[tau] {
			tau++
		}
		lag := refineLag(cmnd, tau)
		freq := float64(sampleRate) / lag
		if freq < minHz || freq > maxHz {
			return 0
		}
		return freq
	}
	return 0
}

// refineLag applies parabolic interpolation over cmnd[tau-1 .. tau+1] to
// recover a fractional lag. Falls back to the integer lag at the array edges
// or when the parabola degenerates.
func refineLag(cmnd []float64, tau int) float64 {
	if tau <= 0 || tau >= len(cmnd)-1 {
		return float64(tau)
	}
	s0, s1, s2 := cmnd[tau-1], cmnd[tau], cmnd[tau+1]
	denom := s0 - 2*s1 + s2
	if denom == 0 {
		return float64(tau)
	}
	shift := (s0 - s2) / (2 * denom)
	// A well-formed minimum shifts by at most half a sample.
	if shift < -0.5 || shift > 0.5 {
		return float64(tau)
	}
	return float64(tau) + shift
}
