// Package audio provides the PCM plumbing for the analysis pipeline: the
// Buffer type that carries a complete recorded utterance, sample decoding
// helpers, and format conversion (downmix, resample) for callers whose
// capture output does not match the analyzer's expected mono format.
package audio

import "time"

// Buffer holds one complete recorded utterance as raw PCM. It is treated as
// immutable once handed to the analysis pipeline.
type Buffer struct {
	// Data is little-endian signed 16-bit PCM, channel-interleaved.
	Data []byte

	// SampleRate in Hz (e.g., 16000 for STT-optimised capture, 48000 for
	// device-native capture).
	SampleRate int

	// Channels: 1 for mono, 2 for interleaved stereo.
	Channels int
}

// NumSamples returns the number of per-channel sample frames in the buffer.
func (b Buffer) NumSamples() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Data) / 2 / b.Channels
}

// Duration returns the playback duration of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.NumSamples()) * time.Second / time.Duration(b.SampleRate)
}

// Floats decodes a mono buffer into normalised float64 samples in [-1, 1].
// Returns nil for non-mono buffers; downmix with [Buffer.Downmixed] first.
func (b Buffer) Floats() []float64 {
	if b.Channels != 1 {
		return nil
	}
	n := len(b.Data) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(b.Data[i*2]) | int16(b.Data[i*2+1])<<8
		out[i] = float64(s) / 32768.0
	}
	return out
}
