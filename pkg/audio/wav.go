package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotWAV is returned when the input does not start with a RIFF/WAVE header.
var ErrNotWAV = errors.New("audio: not a RIFF/WAVE file")

// DecodeWAV reads a PCM WAV stream and returns its contents as a [Buffer].
// Only uncompressed 16-bit PCM (format tag 1) is supported; unknown chunks
// are skipped. The fmt chunk must precede the data chunk.
func DecodeWAV(r io.Reader) (Buffer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Buffer{}, fmt.Errorf("audio: read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Buffer{}, ErrNotWAV
	}

	var (
		haveFmt    bool
		format     uint16
		channels   uint16
		sampleRate uint32
		bitDepth   uint16
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Buffer{}, errors.New("audio: wav has no data chunk")
			}
			return Buffer{}, fmt.Errorf("audio: read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			chunk := make([]byte, size)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return Buffer{}, fmt.Errorf("audio: read fmt chunk: %w", err)
			}
			if size < 16 {
				return Buffer{}, errors.New("audio: wav fmt chunk too short")
			}
			format = binary.LittleEndian.Uint16(chunk[0:2])
			channels = binary.LittleEndian.Uint16(chunk[2:4])
			sampleRate = binary.LittleEndian.Uint32(chunk[4:8])
			bitDepth = binary.LittleEndian.Uint16(chunk[14:16])
			haveFmt = true

		case "data":
			if !haveFmt {
				return Buffer{}, errors.New("audio: wav data chunk before fmt chunk")
			}
			if format != 1 {
				return Buffer{}, fmt.Errorf("audio: unsupported wav format tag %d (want PCM)", format)
			}
			if bitDepth != 16 {
				return Buffer{}, fmt.Errorf("audio: unsupported wav bit depth %d (want 16)", bitDepth)
			}
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return Buffer{}, fmt.Errorf("audio: read data chunk: %w", err)
			}
			return Buffer{
				Data:       data,
				SampleRate: int(sampleRate),
				Channels:   int(channels),
			}, nil

		default:
			// Chunks are word-aligned; odd sizes carry a pad byte.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return Buffer{}, fmt.Errorf("audio: skip %q chunk: %w", id, err)
			}
		}
	}
}

// ReadWAVFile reads the WAV file at path into a [Buffer].
func ReadWAVFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()
	return DecodeWAV(f)
}
