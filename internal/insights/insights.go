package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
)

const (
	INSIGHT_WINDOW_DAYS = 30
	TREND_DAYS          = 7
	unknownEmotion      = "Unknown"
	dayKeyLayout        = "2006-01-02"
)

type EntriesSinceStore interface {
	GetEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.JournalEntry, error)
}

// LoadMoodInsights builds the dashboard aggregates over the last 30 days.
func LoadMoodInsights(ctx context.Context, store EntriesSinceStore, userID string, now time.Time) (models.MoodInsights, error) {
	entries, err := store.GetEntriesSince(ctx, userID, now.AddDate(0, 0, -INSIGHT_WINDOW_DAYS))
	if err != nil {
		return models.MoodInsights{}, fmt.Errorf("[Insights] failed to load entries: %w", err)
	}
	return BuildMoodInsights(entries, now), nil
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayKeyLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func average(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// BuildMoodInsights aggregates entries into the dashboard view. Calendar days
// are taken in now's location.
func BuildMoodInsights(entries []models.JournalEntry, now time.Time) models.MoodInsights {
	loc := now.Location()
	insights := models.MoodInsights{
		Trend:            make([]models.TrendPoint, 0, TREND_DAYS),
		EmotionBreakdown: []models.EmotionCount{},
	}

	var scores []float64
	byDay := make(map[string][]float64)
	daysWithEntries := make(map[string]struct{})
	counts := make(map[string]int)
	var order []string

	weekStart := startOfDay(now).AddDate(0, 0, -(TREND_DAYS - 1))

	for _, e := range entries {
		key := dayKey(e.CreatedAt, loc)
		daysWithEntries[key] = struct{}{}

		if e.Sentiment != nil {
			scores = append(scores, *e.Sentiment)
			byDay[key] = append(byDay[key], *e.Sentiment)
		}

		emotion := e.Emotion
		if emotion == "" {
			emotion = unknownEmotion
		}
		if _, seen := counts[emotion]; !seen {
			order = append(order, emotion)
		}
		counts[emotion]++

		if !e.CreatedAt.Before(weekStart) {
			insights.EntriesThisWeek++
		}
	}

	if avg, ok := average(scores); ok {
		insights.AvgSentiment = &avg
	}

	for _, emotion := range order {
		insights.EmotionBreakdown = append(insights.EmotionBreakdown, models.EmotionCount{Name: emotion, Value: counts[emotion]})
		if insights.DominantEmotion == nil || counts[emotion] > counts[*insights.DominantEmotion] {
			dominant := emotion
			insights.DominantEmotion = &dominant
		}
	}

	for i := TREND_DAYS - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		score, _ := average(byDay[dayKey(day, loc)])
		insights.Trend = append(insights.Trend, models.TrendPoint{Day: day.Format("Mon"), Score: score})
	}

	for i := 0; ; i++ {
		if _, ok := daysWithEntries[dayKey(now.AddDate(0, 0, -i), loc)]; !ok {
			break
		}
		insights.CurrentStreak++
	}

	return insights
}
