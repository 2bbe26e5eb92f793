package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"yard-tracker/internal/config/components"
)

// NewLogger configures the global logger from cfg and returns it.
func NewLogger(cfg components.LoggerConfigImpl) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg components.LoggerConfigImpl, out io.Writer) zerolog.Logger {
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	return log.Logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
