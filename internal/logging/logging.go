// Package logging builds the zerolog loggers shared by the server components
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger
type Options struct {
	Level  string
	Dev    bool
	Output io.Writer
}

// New returns a timestamped root logger. Dev mode writes human-readable
// console lines, otherwise one JSON object per event.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	} else if opts.Dev {
		level = zerolog.DebugLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Dev {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Component tags a child logger with the subsystem name
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
