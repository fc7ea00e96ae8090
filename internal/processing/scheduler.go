package processing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type PendingUsersLister interface {
	UsersWithUnanalyzedEntries(ctx context.Context) ([]string, error)
}

// AnalyzePendingUsers runs AnalyzeUnscored for every user with unscored entries.
func AnalyzePendingUsers(ctx context.Context, lister PendingUsersLister, analyzer *EntryAnalyzer) error {
	users, err := lister.UsersWithUnanalyzedEntries(ctx)
	if err != nil {
		return fmt.Errorf("[Scheduler] failed to list pending users: %w", err)
	}

	start := time.Now()
	analyzed, failed := 0, 0
	for _, userID := range users {
		report, err := analyzer.AnalyzeUnscored(ctx, userID)
		if err != nil {
			slog.Error("[Scheduler] Analysis failed for user",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			continue
		}
		analyzed += report.Analyzed
		failed += report.Failed
	}

	slog.Info("[Scheduler] Pending analysis finished",
		slog.Int("users", len(users)),
		slog.Int("analyzed", analyzed),
		slog.Int("failed", failed),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// NewScheduler registers the pending analysis job on spec. Runs never overlap.
func NewScheduler(ctx context.Context, spec string, lister PendingUsersLister, analyzer *EntryAnalyzer) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(spec, func() {
		slog.Info("[Scheduler] Pending analysis running")
		if err := AnalyzePendingUsers(ctx, lister, analyzer); err != nil {
			slog.Error("[Scheduler] Pending analysis failed",
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("[Scheduler] invalid schedule %q: %w", spec, err)
	}
	return c, nil
}
