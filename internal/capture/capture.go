// Package capture defines the audio payload handed between the recorder,
// the validator, the UI controller and the API client.
package capture

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ContentTypeWAV is the content type of recordings encoded as WAV.
	ContentTypeWAV = "audio/wav"
	// ContentTypeMP3 is the content type of recordings encoded as MP3.
	ContentTypeMP3 = "audio/mpeg"
)

// Capture is an opaque audio payload. It is never mutated after creation;
// a new recording or file selection replaces it wholesale.
type Capture struct {
	Name        string
	ContentType string
	Data        []byte

	// Duration is the playback length when the producer knows it (recordings).
	// Zero means it has to be read from the payload.
	Duration time.Duration
}

// New creates a capture from raw bytes.
func New(name, contentType string, data []byte) *Capture {
	return &Capture{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}
}

// Size returns the payload size in bytes.
func (c *Capture) Size() int64 {
	if c == nil {
		return 0
	}

	return int64(len(c.Data))
}

// Reader returns a fresh reader over the payload.
func (c *Capture) Reader() io.Reader {
	return bytes.NewReader(c.Data)
}

// Ext returns the lower-cased extension of the capture name without the dot.
func (c *Capture) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Name)), ".")
}

// RecordingName builds the timestamped file name used for recordings and uploads,
// e.g. recording_1700000000000.wav.
func RecordingName(t time.Time, ext string) string {
	return fmt.Sprintf("recording_%d.%s", t.UnixMilli(), ext)
}
