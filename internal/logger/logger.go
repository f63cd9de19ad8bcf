package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to w.
// Supports console/json format and level filtering.
func New(w io.Writer, logLevel int, logFormat string) zerolog.Logger {
	writer := w
	if logFormat != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	return zerolog.New(writer).
		Level(zerolog.Level(logLevel)).
		With().
		Timestamp().
		Logger()
}
