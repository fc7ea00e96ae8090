package main

import (
	"log/slog"
	"os"

	"github.com/spacesedan/moodflow/internal/app"
	"github.com/spacesedan/moodflow/internal/processing"
)

// Rescores every stored entry with the keyword engine.
func main() {
	cfg := app.Bootstrap()

	ctx, stop := app.SignalContext()
	defer stop()

	report, err := processing.ReanalyzeAll(ctx, app.NewEntryStore(cfg))
	if err != nil {
		slog.Error("[Main] Reanalysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Main] Reanalysis complete",
		slog.Int("total", report.Total),
		slog.Int("updated", report.Updated),
		slog.Int("errors", report.Errors))
	if report.Errors > 0 {
		os.Exit(1)
	}
}
