// Package logger configures slog for the server and the CLI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alkime/scribe/internal/config"
)

// Level resolves the log level. Development always logs debug.
func Level(env, level string) slog.Level {
	if env == config.EnvDevelopment {
		return slog.LevelDebug
	}

	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupServer configures JSON logging to stdout for the static server.
func SetupServer(cfg *config.Server) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: Level(cfg.Env, cfg.LogLevel),
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// SetupCLI configures text logging to w and makes it the default logger.
func SetupCLI(w io.Writer, level slog.Level) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// OpenLogFile opens path for appending, creating parent directories. The
// TUI owns the terminal, so interactive sessions log here instead.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return f, nil
}

// DefaultLogFile returns the per-user log file location.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "scribe", "scribe.log")
}
