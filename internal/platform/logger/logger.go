package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text output to stdout; services attach
// their own attributes per call site.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
