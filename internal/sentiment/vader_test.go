package sentiment

import (
	"context"
	"strings"
	"testing"
)

func TestConvertMarkdownToText(t *testing.T) {
	t.Parallel()

	got := ConvertMarkdownToText("# Today\n\nI felt **great** after [the walk](https://example.com/walk) & I don't regret it. See www.example.com")
	for _, want := range []string{"Today", "great", "the walk", "&", "don't"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
	for _, unwanted := range []string{"https://", "www.", "<", "**"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("unexpected %q in %q", unwanted, got)
		}
	}
}

func TestVaderScorer(t *testing.T) {
	t.Parallel()

	v := NewVaderScorer()

	positive, err := v.Score(context.Background(), "I am happy and grateful, today was wonderful")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	negative, _ := v.Score(context.Background(), "I feel hopeless, miserable and sad")

	if positive.SentimentScore <= 0.5 || negative.SentimentScore >= 0.5 {
		t.Fatalf("positive=%v negative=%v", positive.SentimentScore, negative.SentimentScore)
	}
	if positive.Emotion != EmotionHappy || negative.Emotion != EmotionSad {
		t.Fatalf("emotions=%q,%q", positive.Emotion, negative.Emotion)
	}

	empty, _ := v.Score(context.Background(), "")
	if empty.SentimentScore != 0.5 || empty.Emotion != EmotionNeutral {
		t.Fatalf("empty=%+v", empty)
	}
}
