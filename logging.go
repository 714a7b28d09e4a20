package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// Logging
// =============================================================================

// newLogger builds the process logger: human-readable console output on
// stderr, or appended to cfg.LogFile without colors. The returned closer
// releases the log file, if any.
func newLogger(cfg Config, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().Local()
	}

	var (
		out    io.Writer = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}
		closer io.Closer = nopCloser{}
	)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		_, _ = fmt.Fprintln(f) // Separate runs in the same file.
		out = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05", NoColor: true}
		closer = f
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
