package models

type TrendPoint struct {
	Day   string  `json:"day"`
	Score float64 `json:"score"`
}

type EmotionCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MoodInsights backs the dashboard. Pointer fields are null when there is no data.
type MoodInsights struct {
	AvgSentiment     *float64       `json:"avgSentiment"`
	DominantEmotion  *string        `json:"dominantEmotion"`
	EntriesThisWeek  int            `json:"entriesThisWeek"`
	CurrentStreak    int            `json:"currentStreak"`
	Trend            []TrendPoint   `json:"trend"`
	EmotionBreakdown []EmotionCount `json:"emotionBreakdown"`
}

type GeneratedInsight struct {
	Insight string `json:"insight"`
	Notice  string `json:"notice,omitempty"`
}

type BatchAnalysisReport struct {
	Analyzed int    `json:"analyzed"`
	Failed   int    `json:"failed"`
	Insight  string `json:"insight,omitempty"`
	Notice   string `json:"notice,omitempty"`
}
