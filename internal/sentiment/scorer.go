package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
)

var ErrMalformedResult = errors.New("malformed analysis result")

// Scorer is a swappable analysis strategy.
type Scorer interface {
	Name() string
	Score(ctx context.Context, text string) (models.AnalysisResult, error)
}

// LexiconScorer is the deterministic engine behind the Scorer interface.
type LexiconScorer struct{}

func NewLexiconScorer() LexiconScorer {
	return LexiconScorer{}
}

func (LexiconScorer) Name() string { return SourceLexicon }

func (LexiconScorer) Score(_ context.Context, text string) (models.AnalysisResult, error) {
	return Analyze(text), nil
}

// FallbackScorer tries Primary and falls back on any failure. With a
// LexiconScorer as Fallback it never returns an error.
type FallbackScorer struct {
	Primary  Scorer
	Fallback Scorer
	// Healthy, when set and false, skips Primary entirely.
	Healthy *atomic.Bool
	Timeout time.Duration
}

func NewFallbackScorer(primary Scorer, healthy *atomic.Bool) *FallbackScorer {
	return &FallbackScorer{
		Primary:  primary,
		Fallback: NewLexiconScorer(),
		Healthy:  healthy,
		Timeout:  30 * time.Second,
	}
}

func (f *FallbackScorer) Name() string {
	return f.Primary.Name() + "+" + f.Fallback.Name()
}

func (f *FallbackScorer) Score(ctx context.Context, text string) (models.AnalysisResult, error) {
	if f.Healthy != nil && !f.Healthy.Load() {
		slog.Debug("[FallbackScorer] Primary scorer marked unhealthy, using fallback",
			slog.String("primary", f.Primary.Name()))
		return f.Fallback.Score(ctx, text)
	}

	primaryCtx := ctx
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		primaryCtx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := f.Primary.Score(primaryCtx, text)
	if err == nil {
		err = Validate(result)
	}
	if err != nil {
		slog.Warn("[FallbackScorer] Primary scorer failed, using fallback",
			slog.String("primary", f.Primary.Name()),
			slog.String("fallback", f.Fallback.Name()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return f.Fallback.Score(ctx, text)
	}

	return result, nil
}

// Validate checks the invariants every result must hold.
func Validate(result models.AnalysisResult) error {
	if math.IsNaN(result.SentimentScore) || result.SentimentScore < 0 || result.SentimentScore > 1 {
		return fmt.Errorf("%w: sentiment %v outside [0,1]", ErrMalformedResult, result.SentimentScore)
	}
	if !IsEmotion(result.Emotion) {
		return fmt.Errorf("%w: unknown emotion %q", ErrMalformedResult, result.Emotion)
	}
	if result.ReflectivePrompt == "" {
		return fmt.Errorf("%w: empty reflective prompt", ErrMalformedResult)
	}
	return nil
}

// fromPolarity builds a result for strategies that only produce a sentiment
// score; the emotion comes from the lexicon engine.
func fromPolarity(text string, sentiment float64, source string) models.AnalysisResult {
	sentiment = clamp01(sentiment)
	emotion := DominantEmotion(text)
	return models.AnalysisResult{
		SentimentScore:   sentiment,
		Emotion:          emotion,
		ReflectivePrompt: SelectPrompt(emotion, sentiment),
		Source:           source,
	}
}
