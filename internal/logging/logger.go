package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the default and returns its handler
// so it can later be combined with the database handler.
func Setup(env string) slog.Handler {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}
