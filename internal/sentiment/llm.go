package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spacesedan/moodflow/internal/models"
)

const SourceOpenAI = "openai"

// SentimentCompleter asks a language model for an emotion and a sentiment score.
type SentimentCompleter interface {
	CompleteSentiment(ctx context.Context, text string) (models.LLMSentimentResponse, error)
}

// labels older prompts used that are not categories of their own
var llmEmotionAliases = map[string]string{
	"calm":    EmotionNeutral,
	"hopeful": EmotionHappy,
	"excited": EmotionHappy,
	"anxiety": EmotionAnxious,
	"stress":  EmotionStressed,
	"anger":   EmotionAngry,
	"sadness": EmotionSad,
}

// LLMScorer delegates scoring to a language model. Responses outside the
// fixed label set or the [0,1] range are rejected as malformed.
type LLMScorer struct {
	completer SentimentCompleter
}

func NewLLMScorer(completer SentimentCompleter) *LLMScorer {
	return &LLMScorer{completer: completer}
}

func (l *LLMScorer) Name() string { return SourceOpenAI }

func (l *LLMScorer) Score(ctx context.Context, text string) (models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return Analyze(text), nil
	}

	resp, err := l.completer.CompleteSentiment(ctx, text)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("[LLMScorer] completion failed: %w", err)
	}

	emotion, err := normalizeLLMEmotion(resp.Emotion)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if math.IsNaN(resp.Sentiment) || resp.Sentiment < 0 || resp.Sentiment > 1 {
		return models.AnalysisResult{}, fmt.Errorf("%w: sentiment %v outside [0,1]", ErrMalformedResult, resp.Sentiment)
	}

	return models.AnalysisResult{
		SentimentScore:   resp.Sentiment,
		Emotion:          emotion,
		ReflectivePrompt: SelectPrompt(emotion, resp.Sentiment),
		Source:           SourceOpenAI,
	}, nil
}

func normalizeLLMEmotion(raw string) (string, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := llmEmotionAliases[label]; ok {
		label = alias
	}
	if !IsEmotion(label) {
		return "", fmt.Errorf("%w: unknown emotion %q", ErrMalformedResult, raw)
	}
	return label, nil
}
