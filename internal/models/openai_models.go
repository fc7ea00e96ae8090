package models

// LLMSentimentResponse is the structured output requested from the LLM.
type LLMSentimentResponse struct {
	Emotion   string  `json:"emotion" jsonschema:"enum=happy,enum=sad,enum=anxious,enum=stressed,enum=angry,enum=neutral" jsonschema_description:"Dominant emotion of the journal entry"`
	Sentiment float64 `json:"sentiment" jsonschema:"minimum=0,maximum=1" jsonschema_description:"0 is very negative, 1 is very positive"`
}
