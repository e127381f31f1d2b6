// Package validate checks candidate audio files against type, extension,
// size and duration policies before they are submitted.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/capture"
)

const (
	// MaxSize is the upload ceiling (10 MiB).
	MaxSize = 10 << 20
	// MaxDuration is the longest accepted recording or file.
	MaxDuration = 2 * time.Minute
)

// AllowedExtensions lists the accepted audio file extensions.
var AllowedExtensions = []string{"wav", "mp3", "ogg"}

// audioTypes maps allowed extensions to MIME types independent of the host's
// mime.types database.
var audioTypes = map[string]string{
	".wav": "audio/wav",
	".mp3": "audio/mpeg",
	".ogg": "audio/ogg",
}

// ErrDurationExceeded is returned when audio is longer than MaxDuration.
var ErrDurationExceeded = errors.New("audio duration exceeds limit")

// File is a candidate audio file.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Capture converts the file into a capture payload.
func (f *File) Capture() *capture.Capture {
	return capture.New(f.Name, f.ContentType, f.Data)
}

// Result is the outcome of Validate.
type Result struct {
	Valid  bool
	Reason string
}

func invalid(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// Validate checks, in order: presence, MIME type, extension and size.
// The first failing check determines the reason.
func Validate(f *File) Result {
	if f == nil {
		return invalid("No file selected.")
	}

	if !strings.HasPrefix(f.ContentType, "audio/") {
		return invalid("Please select an audio file (.wav, .mp3, or .ogg).")
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
	if !slices.Contains(AllowedExtensions, ext) {
		return invalid(fmt.Sprintf("Invalid file type. Allowed types: %s", strings.Join(AllowedExtensions, ", ")))
	}

	if f.Size > MaxSize {
		return invalid(fmt.Sprintf("File too large. Maximum size is %dMB.", MaxSize/(1<<20)))
	}

	return Result{Valid: true}
}

// Duration reads the playback length from the payload metadata. Payloads
// that cannot be decoded report zero, so they are not rejected for length.
func Duration(ctx context.Context, c *capture.Capture) time.Duration {
	if c == nil || ctx.Err() != nil {
		return 0
	}

	d, err := audio.WAVDuration(c.Data)
	if err != nil {
		slog.Debug("duration unavailable, treating as 0", "name", c.Name, "error", err)
		return 0
	}

	return d
}

// CheckDuration returns ErrDurationExceeded when d is over MaxDuration.
func CheckDuration(d time.Duration) error {
	if d > MaxDuration {
		return fmt.Errorf("%w: %s > %s", ErrDurationExceeded, d.Round(time.Second), MaxDuration)
	}

	return nil
}

// FromPath loads a file from disk. The MIME type comes from the extension,
// falling back to content sniffing.
func FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &File{
		Name:        filepath.Base(path),
		ContentType: DetectContentType(filepath.Base(path), data),
		Size:        info.Size(),
		Data:        data,
	}, nil
}

// DetectContentType resolves the MIME type of a named payload.
func DetectContentType(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := audioTypes[ext]; ok {
		return ct
	}

	ct := mime.TypeByExtension(ext)
	if ct == "" {
		ct = http.DetectContentType(data)
	}

	// drop parameters such as "; charset=utf-8"
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}

	return ct
}
