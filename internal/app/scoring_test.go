package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

func TestBuildScoring_LocalStrategies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scorer  string
		primary string
	}{
		{config.ScorerLexicon, sentiment.SourceLexicon},
		{"", sentiment.SourceLexicon},
		{config.ScorerVader, sentiment.SourceVader},
		{"no-such-scorer", sentiment.SourceLexicon},
	}

	for _, tt := range tests {
		stack := BuildScoring(context.Background(), config.AppConfig{Scorer: tt.scorer})
		if stack.Primary != tt.primary {
			t.Fatalf("scorer=%q primary=%q want=%q", tt.scorer, stack.Primary, tt.primary)
		}
		if !stack.PrimaryHealthy() {
			t.Fatalf("scorer=%q reported unhealthy", tt.scorer)
		}
		got, err := stack.Scorer.Score(context.Background(), "I feel so happy today")
		if err != nil {
			t.Fatalf("scorer=%q err=%v", tt.scorer, err)
		}
		if got.Emotion != sentiment.EmotionHappy {
			t.Fatalf("scorer=%q emotion=%q", tt.scorer, got.Emotion)
		}
	}
}

func TestBuildScoring_OpenAIWithoutKeyUsesLexicon(t *testing.T) {
	t.Parallel()

	stack := BuildScoring(context.Background(), config.AppConfig{Scorer: config.ScorerOpenAI})
	if stack.Primary != sentiment.SourceLexicon || stack.Healthy != nil {
		t.Fatalf("primary=%q healthy=%v", stack.Primary, stack.Healthy)
	}
}

func TestBuildScoring_HuggingFaceIsGuarded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stack := BuildScoring(ctx, config.AppConfig{
		Scorer:              config.ScorerHuggingFace,
		HuggingFaceEndpoint: srv.URL,
	})
	if stack.Primary != sentiment.SourceHuggingFace {
		t.Fatalf("primary=%q", stack.Primary)
	}
	if stack.Healthy == nil || stack.Cached {
		t.Fatalf("healthy=%v cached=%v", stack.Healthy, stack.Cached)
	}

	// the stub space returns no results, so the lexicon answers either way
	stack.Healthy.Store(false)
	got, err := stack.Scorer.Score(context.Background(), "I am so worried")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got.Source != sentiment.SourceLexicon {
		t.Fatalf("source=%q", got.Source)
	}
}
