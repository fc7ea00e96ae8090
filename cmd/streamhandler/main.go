package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spacesedan/moodflow/internal/app"
	"github.com/spacesedan/moodflow/internal/streams"
)

var handler *streams.EntryStreamHandler

// init runs once per Lambda cold start
func init() {
	cfg := app.Bootstrap()
	slog.Info("[Main] Lambda cold start", slog.String("env", cfg.AppEnv))

	// the execution environment is frozen between invocations, so the
	// health monitor only runs while a batch is being handled
	scoring := app.BuildScoring(context.Background(), cfg)
	handler = streams.NewEntryStreamHandler(scoring.Scorer, app.NewEntryStore(cfg))

	slog.Info("[Main] Initialization complete", slog.String("scorer", scoring.Primary))
}

func main() {
	lambda.Start(handler.Handle)
}
