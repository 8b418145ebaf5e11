package logger

import (
	"log/slog"
	"os"
)

// Log is the application logger. It falls back to slog's default until Init runs,
// so packages that log during tests never hit a nil logger.
var Log = slog.Default()

func Init(env string) {
	level := slog.LevelDebug
	if env == "production" {
		level = slog.LevelInfo
	}

	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler)
}
