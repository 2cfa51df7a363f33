package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// New returns a tint-backed logger writing to w.
func New(w io.Writer, debug, noColor bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))
}

// FromEnv builds the stderr logger, honouring DEBUG and NO_COLOR.
func FromEnv() *slog.Logger {
	return New(os.Stderr, os.Getenv("DEBUG") != "", os.Getenv("NO_COLOR") != "")
}

func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
