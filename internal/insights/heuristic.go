package insights

import (
	"fmt"
	"strings"

	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

const (
	START_JOURNALING = "Start journaling to get personalized insights!"
	trendMargin      = 0.05
	defaultSentiment = 0.5
)

func sentimentOrDefault(e models.JournalEntry) float64 {
	if e.Sentiment == nil {
		return defaultSentiment
	}
	return *e.Sentiment
}

func meanSentiment(entries []models.JournalEntry) float64 {
	if len(entries) == 0 {
		return defaultSentiment
	}
	sum := 0.0
	for _, e := range entries {
		sum += sentimentOrDefault(e)
	}
	return sum / float64(len(entries))
}

// HeuristicInsight writes an insight without a language model. entries are
// newest first.
func HeuristicInsight(entries []models.JournalEntry) string {
	if len(entries) == 0 {
		return START_JOURNALING
	}

	counts := make(map[string]int)
	dominant := ""
	for _, e := range entries {
		if e.Emotion == "" {
			continue
		}
		counts[e.Emotion]++
		if dominant == "" || counts[e.Emotion] > counts[dominant] {
			dominant = e.Emotion
		}
	}
	if dominant == "" {
		dominant = unknownEmotion
	}

	mid := len(entries) / 2
	newer := meanSentiment(entries[:mid])
	older := meanSentiment(entries[mid:])
	trendWord := "steady"
	switch {
	case mid == 0:
	case newer > older+trendMargin:
		trendWord = "slightly improving"
	case newer < older-trendMargin:
		trendWord = "a bit down"
	}

	suggestion := "Keep noting positive moments; a short gratitude note helps."
	switch strings.ToLower(dominant) {
	case sentiment.EmotionStressed, sentiment.EmotionAnxious, sentiment.EmotionSad:
		suggestion = "Try a 10-minute walk or box breathing to reset."
	}

	return fmt.Sprintf("Your dominant emotion appears to be %s with an average mood score of %.2f. Overall your mood looks %s this week. %s",
		strings.ToLower(dominant), meanSentiment(entries), trendWord, suggestion)
}
