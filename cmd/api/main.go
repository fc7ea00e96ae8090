package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/api"
	"github.com/spacesedan/moodflow/internal/app"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/processing"
)

func main() {
	cfg := app.Bootstrap()

	ctx, stop := app.SignalContext()
	defer stop()

	scoring := app.BuildScoring(ctx, cfg)
	defer scoring.Close()

	store := app.NewEntryStore(cfg)
	handler := &api.Handler{
		Store:    store,
		Scorer:   scoring.Scorer,
		Analyzer: processing.NewEntryAnalyzer(store, scoring.Scorer, cfg.AnalyzeBatchLimit),
		Insights: app.NewInsightGenerator(cfg, store),
		Status: func() api.AIStatus {
			return api.AIStatus{
				Available: cfg.AIAvailable(),
				Scorer:    scoring.Primary,
				Healthy:   scoring.PrimaryHealthy(),
				Cached:    scoring.Cached,
			}
		},
	}

	if cfg.AnalysisMode == config.AnalysisModeAsync {
		for {
			producer, err := kafka_client.NewEntryProducer(kafka_client.GetKafkaConfig())
			if err == nil {
				defer producer.Close()
				handler.Publisher = producer
				break
			}

			slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.SetupRouter(handler, cfg.CORSOrigin),
	}

	go func() {
		slog.Info("[Main] API listening",
			slog.String("addr", srv.Addr),
			slog.String("analysis_mode", cfg.AnalysisMode),
			slog.String("scorer", scoring.Primary))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Graceful shutdown failed", slog.String("error", err.Error()))
	}
}
