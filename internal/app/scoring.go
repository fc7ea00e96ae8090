package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/monitoring"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

// ScoringStack is the configured scorer plus the state the status endpoint
// reports.
type ScoringStack struct {
	Scorer sentiment.Scorer
	// Primary is the strategy that was requested and built. It is "lexicon"
	// when the requested one was unavailable.
	Primary string
	// Healthy is nil for strategies that run in process.
	Healthy *atomic.Bool
	Cached  bool

	closers []func() error
}

func (s *ScoringStack) PrimaryHealthy() bool {
	return s.Healthy == nil || s.Healthy.Load()
}

func (s *ScoringStack) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			slog.Warn("[Scoring] Close failed", slog.String("error", err.Error()))
		}
	}
}

func lexiconStack() *ScoringStack {
	return &ScoringStack{Scorer: sentiment.NewLexiconScorer(), Primary: sentiment.SourceLexicon}
}

// remotePrimary builds the network-backed strategies together with the
// health checker that gates them.
func remotePrimary(cfg config.AppConfig) (sentiment.Scorer, monitoring.HealthChecker, error) {
	switch cfg.Scorer {
	case config.ScorerOpenAI:
		if !cfg.AIAvailable() {
			return nil, nil, fmt.Errorf("[Scoring] %s scorer requires OPENAI_API_KEY", cfg.Scorer)
		}
		client := clients.GetOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		return sentiment.NewLLMScorer(client), client, nil
	case config.ScorerHuggingFace:
		client := clients.GetHuggingFaceClient(cfg.AppEnv, cfg.HuggingFaceEndpoint)
		return sentiment.NewRemoteScorer(client), client, nil
	}
	return nil, nil, fmt.Errorf("[Scoring] unknown remote scorer %q", cfg.Scorer)
}

// BuildScoring assembles Fallback(Cached(primary)) for the configured
// strategy. Health monitors run until ctx is done. Any strategy that cannot
// be built degrades to the lexicon engine.
func BuildScoring(ctx context.Context, cfg config.AppConfig) *ScoringStack {
	switch cfg.Scorer {
	case config.ScorerLexicon, "":
		return lexiconStack()

	case config.ScorerVader:
		return &ScoringStack{
			Scorer:  sentiment.NewFallbackScorer(sentiment.NewVaderScorer(), nil),
			Primary: sentiment.SourceVader,
		}

	case config.ScorerTransformer:
		transformer, err := sentiment.NewTransformerScorer(cfg.TransformerModel, cfg.TransformerModelDir)
		if err != nil {
			slog.Error("[Scoring] Transformer unavailable, using lexicon",
				slog.String("model", cfg.TransformerModel),
				slog.String("error", err.Error()))
			return lexiconStack()
		}
		return &ScoringStack{
			Scorer:  sentiment.NewFallbackScorer(transformer, nil),
			Primary: sentiment.SourceTransformer,
			closers: []func() error{transformer.Close},
		}

	case config.ScorerOpenAI, config.ScorerHuggingFace:
		primary, checker, err := remotePrimary(cfg)
		if err != nil {
			slog.Warn("[Scoring] Remote scorer unavailable, using lexicon",
				slog.String("scorer", cfg.Scorer),
				slog.String("error", err.Error()))
			return lexiconStack()
		}

		stack := &ScoringStack{Primary: primary.Name(), Healthy: &atomic.Bool{}}
		stack.Healthy.Store(true)

		if cfg.CacheEnabled {
			cache, err := clients.InitValkey()
			if err != nil {
				slog.Warn("[Scoring] Result cache disabled",
					slog.String("error", err.Error()))
			} else {
				primary = sentiment.NewCachedScorer(primary, cache, cfg.CacheTTL)
				stack.Cached = true
				stack.closers = append(stack.closers, func() error {
					clients.CloseValkey()
					return nil
				})
			}
		}

		stack.Scorer = sentiment.NewFallbackScorer(primary, stack.Healthy)
		go monitoring.MonitorHealth(ctx, stack.Primary, checker, stack.Healthy, monitoring.HEALTHCHECK_INTERVAL)

		slog.Info("[Scoring] Scorer ready",
			slog.String("primary", stack.Primary),
			slog.Bool("cached", stack.Cached))
		return stack
	}

	slog.Warn("[Scoring] Unknown scorer, using lexicon", slog.String("scorer", cfg.Scorer))
	return lexiconStack()
}
