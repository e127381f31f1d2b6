package audio

import (
	"errors"
	"fmt"

	"github.com/alkime/scribe/internal/capture"
)

// Format is the container recordings are encoded into.
type Format string

const (
	// FormatWAV encodes recordings as 16-bit PCM WAV.
	FormatWAV Format = "wav"
	// FormatMP3 encodes recordings as MP3.
	FormatMP3 Format = "mp3"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatWAV, "":
		return FormatWAV, nil
	case FormatMP3:
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("unsupported recording format %q: must be 'wav' or 'mp3'", s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	return string(f)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatMP3 {
		return capture.ContentTypeMP3
	}

	return capture.ContentTypeWAV
}

// EncoderConfig configures recording encoders.
type EncoderConfig struct {
	// Format selects the output container.
	Format Format

	// SampleRate is the audio sample rate in Hz.
	SampleRate int

	// Channels is the number of audio channels. Only mono is supported.
	Channels int
}

// Validate returns an error if the config is invalid.
func (c EncoderConfig) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels != 1 {
		return errors.New("only mono (1 channel) is supported")
	}

	if c.Format != FormatWAV && c.Format != FormatMP3 {
		return fmt.Errorf("unsupported format %q", c.Format)
	}

	return nil
}

// WithDefaults returns a config with default values applied to zero fields.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.Format == "" {
		c.Format = FormatWAV
	}

	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	return c
}
