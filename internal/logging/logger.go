// Package logging builds the zerolog logger used by the transform binary.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, format and destination.
type Config struct {
	// Level is a zerolog level name (trace, debug, info, warn, error,
	// disabled). Unknown or empty values mean info.
	Level string
	// Format is "json" (default) or "console".
	Format string
	// Output defaults to os.Stderr so stdout stays free for data.
	Output io.Writer
}

// New returns a logger with a timestamp on every event. The level is set on
// the returned logger only; the zerolog global level is left alone.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns l tagged with a component field.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
