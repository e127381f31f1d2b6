package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/wav"
)

// ErrUnsupportedContainer is returned when duration metadata cannot be read
// for the given payload.
var ErrUnsupportedContainer = errors.New("unsupported audio container")

// WAVDuration reads the duration from a WAV header.
func WAVDuration(data []byte) (time.Duration, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return 0, ErrUnsupportedContainer
	}

	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read WAV duration: %w", err)
	}

	return d, nil
}

// PCMDuration returns the playback length of raw S16LE PCM.
func PCMDuration(numBytes int, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}

	frames := numBytes / (BitDepth / 8) / channels

	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
