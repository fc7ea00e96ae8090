package main

import (
	"log/slog"

	"github.com/spacesedan/moodflow/internal/app"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/consumers"
)

func main() {
	cfg := app.Bootstrap()

	ctx, stop := app.SignalContext()
	defer stop()

	scoring := app.BuildScoring(ctx, cfg)
	defer scoring.Close()

	var processed consumers.ProcessedSet
	if cfg.CacheEnabled {
		valkeyClient, err := clients.InitValkey()
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, redelivered entries will be rescored",
				slog.String("error", err.Error()))
		} else {
			processed = valkeyClient
			defer clients.CloseValkey()
		}
	}

	journalConsumer := consumers.NewJournalEntryConsumer(scoring.Scorer, app.NewEntryStore(cfg), processed)
	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_JOURNAL_ENTRIES, journalConsumer.Handle)

	if err := kafka_client.StartConsumer(ctx, kafka_client.GetKafkaConfig()); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
