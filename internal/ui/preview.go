package ui

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/alkime/scribe/internal/capture"
)

// Preview is a playable reference to the current capture: a temporary copy
// on disk that an external player can open. Revoke removes it.
type Preview struct {
	Name        string
	ContentType string
	Size        int64
	Duration    time.Duration
	Path        string
}

func newPreview(dir string, c *capture.Capture, d time.Duration) (*Preview, error) {
	p := &Preview{
		Name:        c.Name,
		ContentType: c.ContentType,
		Size:        c.Size(),
		Duration:    d,
	}

	ext := c.Ext()
	if ext == "" {
		ext = "bin"
	}

	f, err := os.CreateTemp(dir, "scribe-preview-*."+ext)
	if err != nil {
		return p, fmt.Errorf("failed to create preview file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(c.Data); err != nil {
		_ = os.Remove(f.Name())

		return p, fmt.Errorf("failed to write preview file: %w", err)
	}

	p.Path = f.Name()

	return p, nil
}

// Revoke deletes the preview file. Revoking twice is harmless.
func (p *Preview) Revoke() error {
	if p == nil || p.Path == "" {
		return nil
	}

	path := p.Path
	p.Path = ""

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove preview file: %w", err)
	}

	return nil
}
