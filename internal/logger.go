package internal

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Prod emits JSON; dev gets the
// human-readable console writer.
func NewLogger(w io.Writer, env string, level string) zerolog.Logger {
	l := zerolog.InfoLevel
	switch level {
	case "debug":
		l = zerolog.DebugLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	}

	if env != "prod" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(l).With().Timestamp().Logger()
}
