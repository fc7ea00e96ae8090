package models

import "time"

type JournalEntry struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	EntryID   string    `json:"entry_id" dynamodbav:"entry_id"`
	Content   string    `json:"content" dynamodbav:"content"`
	Prompt    string    `json:"prompt,omitempty" dynamodbav:"prompt,omitempty"`
	CreatedAt time.Time `json:"date" dynamodbav:"created_at"`

	// Analysis fields stay empty until the entry has been scored.
	Emotion        string   `json:"emotion,omitempty" dynamodbav:"emotion,omitempty"`
	Sentiment      *float64 `json:"sentiment,omitempty" dynamodbav:"sentiment,omitempty"`
	MoodLabel      string   `json:"mood_label,omitempty" dynamodbav:"mood_label,omitempty"`
	AIReflection   string   `json:"ai_reflection,omitempty" dynamodbav:"ai_reflection,omitempty"`
	AnalysisSource string   `json:"analysis_source,omitempty" dynamodbav:"analysis_source,omitempty"`
}

// IsAnalyzed reports whether the entry already carries an emotion.
func (e JournalEntry) IsAnalyzed() bool {
	return e.Emotion != ""
}

// ApplyAnalysis copies an analysis result onto the entry.
func (e *JournalEntry) ApplyAnalysis(result AnalysisResult) {
	score := result.SentimentScore
	e.Emotion = result.Emotion
	e.Sentiment = &score
	e.MoodLabel = result.Emotion
	e.AIReflection = result.ReflectivePrompt
	e.AnalysisSource = result.Source
}

// EntryEvent is published to Kafka when an entry is saved without analysis.
type EntryEvent struct {
	UserID    string    `json:"user_id"`
	EntryID   string    `json:"entry_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEntryRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Prompt  string `json:"prompt,omitempty"`
}
