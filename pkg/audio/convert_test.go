package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

// pcm16 packs int16 samples into little-endian bytes.
func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestDownmixed_StereoAverages(t *testing.T) {
	t.Parallel()

	// Frames: (100, 200), (-100, 100), (32767, 32767).
	b := Buffer{
		Data:       pcm16(100, 200, -100, 100, 32767, 32767),
		SampleRate: 48000,
		Channels:   2,
	}
	mono := b.Downmixed()

	if mono.Channels != 1 || mono.SampleRate != 48000 {
		t.Fatalf("downmixed to %dch/%dHz, want 1ch/48000Hz", mono.Channels, mono.SampleRate)
	}
	want := []int16{150, 0, 32767}
	got := mono.Floats()
	if len(got) != len(want) {
		t.Fatalf("sample count = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if g := got[i] * 32768; int16(g) != w {
			t.Errorf("sample %d = %v, want %d", i, g, w)
		}
	}
}

func TestDownmixed_MonoUnchanged(t *testing.T) {
	t.Parallel()

	b := Buffer{Data: pcm16(1, 2, 3), SampleRate: 16000, Channels: 1}
	if got := b.Downmixed(); &got.Data[0] != &b.Data[0] {
		t.Error("mono downmix should not copy")
	}
}

func TestResampled_Identity(t *testing.T) {
	t.Parallel()

	b := Buffer{Data: pcm16(1, 2, 3, 4), SampleRate: 16000, Channels: 1}
	if got := b.Resampled(16000); &got.Data[0] != &b.Data[0] {
		t.Error("same-rate resample should not copy")
	}
}

func TestResampled_Halves(t *testing.T) {
	t.Parallel()

	b := Buffer{Data: pcm16(0, 10, 20, 30, 40, 50, 60, 70), SampleRate: 32000, Channels: 1}
	out := b.Resampled(16000)

	if out.SampleRate != 16000 {
		t.Fatalf("rate = %d, want 16000", out.SampleRate)
	}
	if out.NumSamples() != 4 {
		t.Fatalf("samples = %d, want 4", out.NumSamples())
	}
	// 2:1 decimation lands exactly on source samples.
	want := []int16{0, 20, 40, 60}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(out.Data[i*2:]))
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestResampled_StereoUnchanged(t *testing.T) {
	t.Parallel()

	b := Buffer{Data: pcm16(1, 2, 3, 4), SampleRate: 16000, Channels: 2}
	if got := b.Resampled(8000); got.SampleRate != 16000 {
		t.Error("stereo buffers must pass through unchanged")
	}
}

func TestBufferDuration(t *testing.T) {
	t.Parallel()

	b := Buffer{Data: make([]byte, 32000), SampleRate: 16000, Channels: 1}
	if got := b.Duration(); got != time.Second {
		t.Errorf("Duration = %v, want 1s", got)
	}
	if got := (Buffer{}).Duration(); got != 0 {
		t.Errorf("zero buffer Duration = %v, want 0", got)
	}
}

func TestFloats_NonMonoNil(t *testing.T) {
	t.Parallel()

	b := Buffer{Data: pcm16(1, 2), SampleRate: 16000, Channels: 2}
	if b.Floats() != nil {
		t.Error("Floats on stereo buffer should be nil")
	}
}
