package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

const REANALYZE_BATCH_SIZE = 25

type AllEntriesStore interface {
	ScanAllEntries(ctx context.Context) ([]models.JournalEntry, error)
	PutEntries(ctx context.Context, entries []models.JournalEntry) error
}

type ReanalyzeReport struct {
	Total   int
	Updated int
	Errors  int
}

// ReanalyzeAll rescores every stored entry with the lexicon engine so results
// follow the current keyword tables. Entries are written back in batches; a
// failed batch counts all of its entries as errors.
func ReanalyzeAll(ctx context.Context, store AllEntriesStore) (ReanalyzeReport, error) {
	var report ReanalyzeReport

	entries, err := store.ScanAllEntries(ctx)
	if err != nil {
		return report, fmt.Errorf("[Reanalyze] failed to load entries: %w", err)
	}
	report.Total = len(entries)
	if len(entries) == 0 {
		slog.Info("[Reanalyze] No entries found to analyze")
		return report, nil
	}

	slog.Info("[Reanalyze] Starting re-analysis", slog.Int("entries", len(entries)))

	for i := 0; i < len(entries); i += REANALYZE_BATCH_SIZE {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := min(i+REANALYZE_BATCH_SIZE, len(entries))
		batch := make([]models.JournalEntry, 0, end-i)
		for _, entry := range entries[i:end] {
			entry.ApplyAnalysis(sentiment.Analyze(entry.Content))
			batch = append(batch, entry)
		}

		if err := store.PutEntries(ctx, batch); err != nil {
			slog.Error("[Reanalyze] Failed to write batch",
				slog.Int("batch_start", i),
				slog.Int("batch_size", len(batch)),
				slog.String("error", err.Error()))
			report.Errors += len(batch)
			continue
		}
		report.Updated += len(batch)
		slog.Info("[Reanalyze] Progress",
			slog.Int("updated", report.Updated),
			slog.Int("total", report.Total))
	}

	slog.Info("[Reanalyze] Re-analysis complete",
		slog.Int("updated", report.Updated),
		slog.Int("errors", report.Errors))
	return report, nil
}
