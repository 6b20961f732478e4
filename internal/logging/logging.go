// Package logging configures the application-wide zerolog logger.
//
// Commands create one root logger at startup and attach it to the
// command context; packages retrieve it with FromContext and tag their
// entries with ComponentLogger.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format selects "console" (human readable) or "json".
	Format string `yaml:"format"`

	// File, when non-empty, appends logs to the given path instead of stderr.
	File string `yaml:"file"`
}

// Result holds the constructed logger and the file handle backing it,
// if any, so callers can close it on shutdown.
type Result struct {
	Logger    zerolog.Logger
	UsingFile bool
	FilePath  string

	file *os.File
}

// Close releases the log file handle, if one is open.
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New builds a logger from cfg. An unparseable level falls back to info.
// If the configured file cannot be opened the logger falls back to a
// console writer on stderr rather than failing the command.
func New(cfg Config) Result {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer
	result := Result{}

	switch {
	case cfg.File != "":
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if openErr != nil {
			w = consoleWriter()
		} else {
			w = f
			result.file = f
			result.UsingFile = true
			result.FilePath = cfg.File
		}
	case cfg.Format == "json":
		w = os.Stderr
	default:
		w = consoleWriter()
	}

	result.Logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return result
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

// ComponentLogger returns a child logger tagged with a component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// WithContext attaches the logger to ctx for later retrieval via FromContext.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger when
// ctx is nil or none was attached (library code never logs unless a command
// wired one up).
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return zerolog.Nop()
	}
	logger := zerolog.Ctx(ctx)
	return *logger
}
