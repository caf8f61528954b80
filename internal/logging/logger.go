package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the slog default. It runs before the
// database is up; once it is, main swaps in a MultiHandler that adds the
// system_logs sink on top of stdout.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
