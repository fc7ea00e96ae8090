package models

// AnalysisResult is what every scoring strategy returns for a single text.
type AnalysisResult struct {
	SentimentScore   float64 `json:"sentiment_score"`
	Emotion          string  `json:"emotion"`
	ReflectivePrompt string  `json:"reflective_prompt"`
	// Source names the strategy that produced the result (lexicon, vader, openai, ...)
	Source string `json:"source,omitempty"`
}

// AnalysisBreakdown exposes the intermediate state of a lexicon pass.
type AnalysisBreakdown struct {
	AnalysisResult
	EmotionScores map[string]float64 `json:"emotion_scores"`
	TotalMatches  int                `json:"total_matches"`
	WordCount     int                `json:"word_count"`
	SentimentSum  float64            `json:"sentiment_sum"`
}
