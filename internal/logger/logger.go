// Package logger configures the application-wide zerolog logger.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/josmejia2401/jac-vision/internal/config"
)

// New builds the root logger from the logging configuration. Format
// "console" gives human-readable output, anything else stays JSON.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level := parseLevel(cfg.Level)

	var l zerolog.Logger
	if strings.EqualFold(cfg.Format, "console") {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l = zerolog.New(os.Stderr)
	}

	return l.Level(level).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
