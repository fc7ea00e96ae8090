package insights

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/models"
)

const (
	GENERATE_WINDOW_DAYS = 7
	GENERATE_MAX_ENTRIES = 10

	NOTICE_AI_DISABLED    = "AI disabled, using heuristic insight."
	NOTICE_QUOTA_EXCEEDED = "AI quota exceeded, using heuristic insight."
	NOTICE_AI_UNAVAILABLE = "AI unavailable, using heuristic insight."

	emptyCompletionInsight = "Keep exploring your emotions through journaling."
)

const insightSystemPrompt = "You are a compassionate mental health coach. Based on the user's recent journal entries, " +
	"provide a brief (2-3 sentences), warm, and actionable insight or observation. Be specific to their entries. Do not be generic."

// InsightCompleter is implemented by the OpenAI client.
type InsightCompleter interface {
	GenerateInsight(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Generator struct {
	Store     EntriesSinceStore
	Completer InsightCompleter // nil disables the language model
	Now       func() time.Time
	// IsQuotaError picks the notice shown when the completer fails.
	IsQuotaError func(error) bool
}

func NewGenerator(store EntriesSinceStore, completer InsightCompleter) *Generator {
	return &Generator{
		Store:        store,
		Completer:    completer,
		Now:          time.Now,
		IsQuotaError: clients.IsQuotaError,
	}
}

// RecentEntries returns at most 10 entries of the last 7 days, newest first.
func (g *Generator) RecentEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	entries, err := g.Store.GetEntriesSince(ctx, userID, g.Now().AddDate(0, 0, -GENERATE_WINDOW_DAYS))
	if err != nil {
		return nil, fmt.Errorf("[InsightGenerator] failed to load entries: %w", err)
	}
	entries = slices.Clone(entries)
	slices.Reverse(entries)
	if len(entries) > GENERATE_MAX_ENTRIES {
		entries = entries[:GENERATE_MAX_ENTRIES]
	}
	return entries, nil
}

func (g *Generator) Generate(ctx context.Context, userID string) (models.GeneratedInsight, error) {
	entries, err := g.RecentEntries(ctx, userID)
	if err != nil {
		return models.GeneratedInsight{}, err
	}
	if len(entries) == 0 {
		return models.GeneratedInsight{Insight: START_JOURNALING}, nil
	}

	if g.Completer == nil {
		return models.GeneratedInsight{Insight: HeuristicInsight(entries), Notice: NOTICE_AI_DISABLED}, nil
	}

	insight, err := g.Completer.GenerateInsight(ctx, insightSystemPrompt, buildUserPrompt(entries))
	if err != nil {
		notice := NOTICE_AI_UNAVAILABLE
		if g.IsQuotaError != nil && g.IsQuotaError(err) {
			notice = NOTICE_QUOTA_EXCEEDED
		}
		slog.Warn("[InsightGenerator] Completion failed, using heuristic insight",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return models.GeneratedInsight{Insight: HeuristicInsight(entries), Notice: notice}, nil
	}

	if strings.TrimSpace(insight) == "" {
		insight = emptyCompletionInsight
	}
	return models.GeneratedInsight{Insight: insight}, nil
}

func buildUserPrompt(entries []models.JournalEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		emotion := e.Emotion
		if emotion == "" {
			emotion = unknownEmotion
		}
		lines = append(lines, fmt.Sprintf("[%s] (%.2f) - %s", emotion, sentimentOrDefault(e), e.Content))
	}

	return "Here are my recent journal entries with emotions and sentiment scores:\n\n" +
		strings.Join(lines, "\n\n") +
		"\n\nPlease provide a personalized insight about my mood patterns and suggest one small action I could take to support my wellbeing."
}
