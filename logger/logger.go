// Package logger builds the daemon's root zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options selects where and how the daemon logs.
type Options struct {
	File   string // Append JSON lines to this file; empty logs to stdout
	Pretty bool   // Human-readable console output; ignored when File is set
	Level  string // trace, debug, info, warn, error; empty falls back to LOG_LEVEL
}

// New returns the root logger for opts. The returned closer releases the log
// file and is a no-op for stdout.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	levelName := opts.Level
	if levelName == "" {
		levelName = os.Getenv("LOG_LEVEL")
	}
	level := ParseLevel(levelName)

	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	switch {
	case opts.File != "":
		//nolint:gosec // G304: User-specified log file path is intentional
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		out, closer = file, file
	case opts.Pretty:
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	log := NewWithWriter(out, level)
	event := log.Info().Str("logLevel", level.String())
	if opts.File != "" {
		event = event.Str("path", opts.File)
	} else {
		event = event.Str("output", "stdout").Bool("pretty", opts.Pretty)
	}
	event.Msg("Logger initialized")

	return log, closer, nil
}

// NewWithWriter returns a timestamped JSON logger writing to w.
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "foliod").
		Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
