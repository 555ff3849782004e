package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the global JSON logger on stdout at the given level.
func Setup(level slog.Level) {
	slog.SetDefault(slog.New(NewJSONHandler(os.Stdout, level)))
}

func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
