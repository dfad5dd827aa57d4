// Package logging configures the zerolog logger shared by the finder commands.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is a textual log level as it appears in configuration.
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarn     Level = "warn"
	LevelError    Level = "error"
	LevelDisabled Level = "disabled"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr so stdout stays free for result records.
	Output io.Writer
}

// DefaultConfig returns the logger configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup builds a timestamped logger from cfg and installs it as the global
// zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a configured level onto zerolog. Unknown values mean info.
func ParseLevel(level Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Component derives a child logger tagged with the component name.
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str("component", name).Logger()
}

// WithRun tags every event with the run identifier.
func WithRun(parent zerolog.Logger, runID string) zerolog.Logger {
	return parent.With().Str("run_id", runID).Logger()
}

// Context fields used across the finder:
//   - run_id: identifier of one batch run
//   - batch: 1-based batch number, with batches for the total
//   - domain: query domain (names are never logged)
//   - status: outcome status of a query
//   - error_class: network, timeout, client, server or decode
//   - duration: elapsed time of a request or batch
