package main

import (
	"log/slog"
	"os"

	"github.com/spacesedan/moodflow/internal/app"
	"github.com/spacesedan/moodflow/internal/processing"
)

func main() {
	cfg := app.Bootstrap()

	ctx, stop := app.SignalContext()
	defer stop()

	scoring := app.BuildScoring(ctx, cfg)
	defer scoring.Close()

	store := app.NewEntryStore(cfg)
	analyzer := processing.NewEntryAnalyzer(store, scoring.Scorer, cfg.AnalyzeBatchLimit)

	c, err := processing.NewScheduler(ctx, cfg.SchedulerSpec, store, analyzer)
	if err != nil {
		slog.Error("[Main] Failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	c.Start()
	slog.Info("[Main] Scheduler started", slog.String("spec", cfg.SchedulerSpec))

	<-ctx.Done()
	slog.Info("[Main] Waiting for running jobs...")
	<-c.Stop().Done()
}
