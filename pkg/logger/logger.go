// Package logger configures the zerolog instances used throughout the
// payment service. Output is structured JSON by default; pretty switches
// to the console writer for local development.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. Level accepts debug, info, warn and error;
// anything else falls back to info.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return newLogger(level, w).With().Caller().Logger()
}

// NewWithWriter builds a logger against an arbitrary writer, used by tests.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return newLogger(level, w)
}

func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
