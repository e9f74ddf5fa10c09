// Package logging provides the structured zerolog logger shared by the
// relay tools.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger at the given level. Supported levels:
// debug, info, warn, error. Defaults to info.
func New(level string) zerolog.Logger {
	var lvl zerolog.Level
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(lvl).With().Timestamp().Logger()
}

// Component returns a sub-logger tagged with a component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
