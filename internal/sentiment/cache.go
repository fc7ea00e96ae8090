package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
)

// ResultCache stores analysis results by key. Implemented by the Valkey client.
type ResultCache interface {
	GetAnalysis(ctx context.Context, key string) (models.AnalysisResult, bool)
	SetAnalysis(ctx context.Context, key string, result models.AnalysisResult, ttl time.Duration) error
}

// CachedScorer memoises a remote scorer. Cache errors are logged and ignored.
type CachedScorer struct {
	Scorer Scorer
	Cache  ResultCache
	TTL    time.Duration
}

func NewCachedScorer(scorer Scorer, cache ResultCache, ttl time.Duration) *CachedScorer {
	return &CachedScorer{Scorer: scorer, Cache: cache, TTL: ttl}
}

func (c *CachedScorer) Name() string { return c.Scorer.Name() }

func (c *CachedScorer) Score(ctx context.Context, text string) (models.AnalysisResult, error) {
	key := CacheKey(c.Scorer.Name(), text)

	if result, ok := c.Cache.GetAnalysis(ctx, key); ok {
		slog.Debug("[CachedScorer] Cache hit", slog.String("scorer", c.Scorer.Name()))
		return result, nil
	}

	result, err := c.Scorer.Score(ctx, text)
	if err != nil {
		return result, err
	}
	if err := Validate(result); err != nil {
		return result, err
	}

	if err := c.Cache.SetAnalysis(ctx, key, result, c.TTL); err != nil {
		slog.Warn("[CachedScorer] Failed to cache analysis",
			slog.String("scorer", c.Scorer.Name()),
			slog.String("error", err.Error()))
	}
	return result, nil
}

func CacheKey(scorer, text string) string {
	hash := sha256.Sum256([]byte(scorer + ":" + text))
	return "analysis:" + hex.EncodeToString(hash[:])
}
