package logger

import (
	"log/slog"
	"os"
)

// New returns the structured logger handed to services and handlers.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
