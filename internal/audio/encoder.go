package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// wavPCMFormat is the WAVE format tag for uncompressed PCM.
const wavPCMFormat = 1

// Encode converts raw S16LE PCM into the configured container and returns
// the encoded bytes.
func Encode(config EncoderConfig, pcm []byte) ([]byte, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	samples := BytesToInt16(pcm)

	switch config.Format {
	case FormatMP3:
		var buf bytes.Buffer
		if err := encodeMP3(&buf, samples, config.SampleRate); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	default:
		ws := &writeSeeker{}
		if err := encodeWAV(ws, samples, config.SampleRate, config.Channels); err != nil {
			return nil, err
		}

		return ws.Bytes(), nil
	}
}

// encodeWAV writes 16-bit PCM samples as a WAV file.
func encodeWAV(w io.WriteSeeker, samples []int16, sampleRate, channels int) error {
	enc := wav.NewEncoder(w, sampleRate, BitDepth, channels, wavPCMFormat)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: BitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode WAV: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}

	return nil
}

// encodeMP3 encodes mono samples to MP3.
func encodeMP3(w io.Writer, monoSamples []int16, sampleRate int) error {
	if len(monoSamples) == 0 {
		return errors.New("no samples to encode")
	}

	// WORKAROUND: shine-mp3 Write() has a bug for mono (always increments by samples_per_pass * 2)
	// Convert mono to stereo by duplicating samples (L=R)
	stereoSamples := make([]int16, len(monoSamples)*2)
	for i, sample := range monoSamples {
		stereoSamples[i*2] = sample
		stereoSamples[i*2+1] = sample
	}

	slog.Debug("encoding MP3",
		"monoSamples", len(monoSamples),
		"sampleRate", sampleRate)

	encoder := mp3encoder.NewEncoder(sampleRate, 2)
	if err := encoder.Write(w, stereoSamples); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	return nil
}

// BytesToInt16 converts S16LE (signed 16-bit little-endian) bytes to int16 samples.
// A trailing odd byte is ignored.
func BytesToInt16(data []byte) []int16 {
	numSamples := len(data) / 2
	if numSamples == 0 {
		return nil
	}

	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	return samples
}

// writeSeeker is an in-memory io.WriteSeeker; the WAV encoder seeks back
// to patch chunk sizes on Close.
type writeSeeker struct {
	buf []byte
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	end := ws.pos + len(p)
	if end > len(ws.buf) {
		ws.buf = append(ws.buf, make([]byte, end-len(ws.buf))...)
	}

	copy(ws.buf[ws.pos:], p)
	ws.pos = end

	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(ws.pos) + offset
	case io.SeekEnd:
		abs = int64(len(ws.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}

	if abs < 0 {
		return 0, errors.New("negative position")
	}

	ws.pos = int(abs)

	return abs, nil
}

func (ws *writeSeeker) Bytes() []byte {
	return ws.buf
}
