package processing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

const (
	ANALYZE_BATCH_LIMIT = 20
	WRITE_ATTEMPTS      = 3
	NO_NEW_ENTRIES      = "No new entries to analyze"
	initialWriteBackoff = 200 * time.Millisecond
	analyzedInsightFmt  = "Successfully analyzed %d entries"
	analyzedLexiconFmt  = "Analyzed %d entries using keyword detection"
)

// EntryStore is the persistence the batch analysis needs.
type EntryStore interface {
	GetUnanalyzedEntries(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error)
	UpdateEntryAnalysis(ctx context.Context, userID, entryID string, result models.AnalysisResult) error
}

// EntryAnalyzer scores stored entries that have no analysis yet.
type EntryAnalyzer struct {
	Store   EntryStore
	Scorer  sentiment.Scorer
	Limit   int
	Backoff time.Duration
}

func NewEntryAnalyzer(store EntryStore, scorer sentiment.Scorer, limit int) *EntryAnalyzer {
	if limit <= 0 {
		limit = ANALYZE_BATCH_LIMIT
	}
	return &EntryAnalyzer{
		Store:   store,
		Scorer:  scorer,
		Limit:   limit,
		Backoff: initialWriteBackoff,
	}
}

// AnalyzeUnscored scores up to Limit of the user's newest unscored entries and
// writes each result back. A failed write is counted, it does not stop the batch.
func (a *EntryAnalyzer) AnalyzeUnscored(ctx context.Context, userID string) (models.BatchAnalysisReport, error) {
	var report models.BatchAnalysisReport

	entries, err := a.Store.GetUnanalyzedEntries(ctx, userID, a.Limit)
	if err != nil {
		return report, fmt.Errorf("[EntryAnalyzer] failed to fetch unanalyzed entries: %w", err)
	}
	if len(entries) == 0 {
		report.Notice = NO_NEW_ENTRIES
		return report, nil
	}

	slog.Info("[EntryAnalyzer] Analyzing entries",
		slog.String("user_id", userID),
		slog.Int("count", len(entries)),
		slog.String("scorer", a.Scorer.Name()))

	allLexicon := true
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := a.Scorer.Score(ctx, entry.Content)
		if err != nil {
			slog.Warn("[EntryAnalyzer] Scoring failed, using lexicon",
				slog.String("entry_id", entry.EntryID),
				slog.String("error", err.Error()))
			result = sentiment.Analyze(entry.Content)
		}
		if result.Source != sentiment.SourceLexicon {
			allLexicon = false
		}

		if err := a.writeWithRetry(ctx, entry, result); err != nil {
			slog.Error("[EntryAnalyzer] Failed to store analysis",
				slog.String("entry_id", entry.EntryID),
				slog.String("error", err.Error()))
			report.Failed++
			continue
		}
		report.Analyzed++
	}

	if allLexicon {
		report.Insight = fmt.Sprintf(analyzedLexiconFmt, report.Analyzed)
	} else {
		report.Insight = fmt.Sprintf(analyzedInsightFmt, report.Analyzed)
	}
	return report, nil
}

func (a *EntryAnalyzer) writeWithRetry(ctx context.Context, entry models.JournalEntry, result models.AnalysisResult) error {
	var err error
	backoff := a.Backoff

	for attempt := 0; attempt < WRITE_ATTEMPTS; attempt++ {
		err = a.Store.UpdateEntryAnalysis(ctx, entry.UserID, entry.EntryID, result)
		if err == nil {
			return nil
		}

		slog.Warn("[EntryAnalyzer] Write failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("entry_id", entry.EntryID),
			slog.String("error", err.Error()))

		if attempt == WRITE_ATTEMPTS-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
