package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// wavFormat holds WAV file format information
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Clip is decoded PCM audio ready for playback
type Clip struct {
	Format wavFormat
	PCM    []byte
}

var errNotWAV = errors.New("not a RIFF/WAVE file")

// playable reports whether the backend can play the format. The device is
// always opened as signed 16-bit little endian.
func (f wavFormat) playable() error {
	if f.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth %d, want 16", f.BitDepth)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("unsupported channel count %d", f.Channels)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	return nil
}

// parseWAV parses a WAV file and returns the format and audio data
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	// Read RIFF header
	header := make([]byte, 12)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, nil, errNotWAV
	}

	var format *wavFormat

	// Read chunks
	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(reader, chunkID); err != nil {
			if err == io.EOF {
				return nil, nil, errors.New("missing data chunk")
			}
			return nil, nil, err
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, err
		}

		switch string(chunkID) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(reader, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format = &wavFormat{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.NumChannels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}

			// Skip any extra format bytes
			if remaining := int64(chunkSize) - 16; remaining > 0 {
				reader.Seek(remaining, io.SeekCurrent)
			}
		case "data":
			if format == nil {
				return nil, nil, errors.New("data chunk before fmt chunk")
			}
			size := int(chunkSize)
			if size > reader.Len() {
				size = reader.Len()
			}
			audioData := make([]byte, size)
			if _, err := io.ReadFull(reader, audioData); err != nil {
				return nil, nil, fmt.Errorf("read data chunk: %w", err)
			}
			return format, audioData, nil
		default:
			// Skip unknown chunk, chunks are word aligned
			skip := int64(chunkSize) + int64(chunkSize%2)
			reader.Seek(skip, io.SeekCurrent)
		}
	}
}
