package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildWAV assembles a minimal RIFF/WAVE stream around the given PCM payload.
// extraChunk, when non-nil, is inserted between fmt and data.
func buildWAV(formatTag, channels uint16, sampleRate uint32, bitDepth uint16, pcm []byte, extraChunk []byte) []byte {
	var body bytes.Buffer

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], formatTag)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], channels)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], sampleRate)
	byteRate := sampleRate * uint32(channels) * uint32(bitDepth) / 8
	binary.LittleEndian.PutUint32(fmtChunk[8:12], byteRate)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], channels*bitDepth/8)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], bitDepth)

	writeChunk := func(id string, payload []byte) {
		body.WriteString(id)
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
		body.Write(size[:])
		body.Write(payload)
		if len(payload)%2 == 1 {
			body.WriteByte(0)
		}
	}

	writeChunk("fmt ", fmtChunk)
	if extraChunk != nil {
		writeChunk("LIST", extraChunk)
	}
	writeChunk("data", pcm)

	var out bytes.Buffer
	out.WriteString("RIFF")
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+body.Len()))
	out.Write(size[:])
	out.WriteString("WAVE")
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestDecodeWAV_Roundtrip(t *testing.T) {
	t.Parallel()

	pcm := []byte{0x01, 0x00, 0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}
	wav := buildWAV(1, 1, 16000, 16, pcm, nil)

	buf, err := DecodeWAV(bytes.NewReader(wav))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if buf.SampleRate != 16000 || buf.Channels != 1 {
		t.Errorf("decoded %dHz/%dch, want 16000Hz/1ch", buf.SampleRate, buf.Channels)
	}
	if !bytes.Equal(buf.Data, pcm) {
		t.Errorf("data = %v, want %v", buf.Data, pcm)
	}
}

func TestDecodeWAV_SkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	pcm := []byte{0x34, 0x12}
	// Odd-sized metadata chunk exercises the word-alignment padding.
	wav := buildWAV(1, 2, 48000, 16, pcm, []byte("INFOx"))

	buf, err := DecodeWAV(bytes.NewReader(wav))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if buf.SampleRate != 48000 || buf.Channels != 2 {
		t.Errorf("decoded %dHz/%dch, want 48000Hz/2ch", buf.SampleRate, buf.Channels)
	}
	if !bytes.Equal(buf.Data, pcm) {
		t.Errorf("data = %v, want %v", buf.Data, pcm)
	}
}

func TestDecodeWAV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
	}{
		{"not_riff", []byte("OGGS........")},
		{"truncated_header", []byte("RIFF")},
		{"float_format", buildWAV(3, 1, 16000, 16, []byte{0, 0}, nil)},
		{"eight_bit", buildWAV(1, 1, 16000, 8, []byte{0, 0}, nil)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeWAV(bytes.NewReader(tt.in)); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestDecodeWAV_NotWAVSentinel(t *testing.T) {
	t.Parallel()

	_, err := DecodeWAV(bytes.NewReader([]byte("RIFFxxxxJUNK")))
	if !errors.Is(err, ErrNotWAV) {
		t.Errorf("err = %v, want ErrNotWAV", err)
	}
}

func TestReadWAVFile_Missing(t *testing.T) {
	t.Parallel()

	if _, err := ReadWAVFile("testdata/does-not-exist.wav"); err == nil {
		t.Error("expected error for missing file")
	}
}
