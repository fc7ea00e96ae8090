package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/db"
	"github.com/spacesedan/moodflow/internal/insights"
	"github.com/spacesedan/moodflow/internal/logging"
)

// Bootstrap loads the environment file for APP_ENV, installs the logger and
// returns the parsed config. Every binary calls it first.
func Bootstrap() config.AppConfig {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger()
	return config.Load()
}

// SignalContext is canceled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func NewEntryStore(cfg config.AppConfig) *db.EntryStore {
	return db.NewEntryStore(clients.GetDynamoDBClient(), cfg.EntriesTable)
}

// NewInsightGenerator uses the language model only when a key is configured.
func NewInsightGenerator(cfg config.AppConfig, store insights.EntriesSinceStore) *insights.Generator {
	var completer insights.InsightCompleter
	if cfg.AIAvailable() {
		completer = clients.GetOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	return insights.NewGenerator(store, completer)
}
