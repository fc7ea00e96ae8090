package sentiment

import (
	"math"
	"sync"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyze_EmptyInputIsNeutral(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\n\t "} {
		got := Analyze(text)
		if got.SentimentScore != 0.5 {
			t.Fatalf("Analyze(%q).SentimentScore=%v", text, got.SentimentScore)
		}
		if got.Emotion != EmotionNeutral {
			t.Fatalf("Analyze(%q).Emotion=%q", text, got.Emotion)
		}
		if got.ReflectivePrompt != Prompts(EmotionNeutral)[0] {
			t.Fatalf("Analyze(%q).ReflectivePrompt=%q", text, got.ReflectivePrompt)
		}
		if got.Source != SourceLexicon {
			t.Fatalf("Analyze(%q).Source=%q", text, got.Source)
		}
	}
}

func TestAnalyze_PositiveText(t *testing.T) {
	t.Parallel()

	got := Analyze("I am so happy and grateful today")
	if got.Emotion != EmotionHappy {
		t.Fatalf("Emotion=%q", got.Emotion)
	}
	if got.SentimentScore <= 0.5 {
		t.Fatalf("SentimentScore=%v", got.SentimentScore)
	}
	// (0.5 + (1.3*1.25 + 1.3)/(2*4)) * 1.1
	if !approxEqual(got.SentimentScore, 0.9521875) {
		t.Fatalf("SentimentScore=%v", got.SentimentScore)
	}
	if got.ReflectivePrompt != "What positive moments stand out to you?" {
		t.Fatalf("ReflectivePrompt=%q", got.ReflectivePrompt)
	}
}

func TestAnalyze_NegativeText(t *testing.T) {
	t.Parallel()

	b := Breakdown("I feel hopeless and exhausted and sad")
	if b.Emotion != EmotionSad {
		t.Fatalf("Emotion=%q", b.Emotion)
	}
	if b.SentimentScore >= 0.5 {
		t.Fatalf("SentimentScore=%v", b.SentimentScore)
	}
	// "exhausted" counts for both sad and stressed
	if b.TotalMatches != 4 {
		t.Fatalf("TotalMatches=%d", b.TotalMatches)
	}
	if !approxEqual(b.EmotionScores[EmotionSad], 3.9) || !approxEqual(b.EmotionScores[EmotionStressed], 1.3) {
		t.Fatalf("EmotionScores=%v", b.EmotionScores)
	}
	if !approxEqual(b.SentimentScore, 0.264) {
		t.Fatalf("SentimentScore=%v", b.SentimentScore)
	}
}

func TestAnalyze_NegationLowersSentiment(t *testing.T) {
	t.Parallel()

	plain := Analyze("I am happy")
	negated := Analyze("I am not happy")

	if negated.SentimentScore >= plain.SentimentScore {
		t.Fatalf("negated=%v plain=%v", negated.SentimentScore, plain.SentimentScore)
	}
	// a negated match leaves happy below zero so nothing dominates
	if negated.Emotion != EmotionNeutral {
		t.Fatalf("Emotion=%q", negated.Emotion)
	}
	if !approxEqual(negated.SentimentScore, (0.5-0.65/4)*1.1) {
		t.Fatalf("SentimentScore=%v", negated.SentimentScore)
	}
}

func TestAnalyze_NegatedNegativeRaisesSentiment(t *testing.T) {
	t.Parallel()

	got := Analyze("I am not sad")
	if got.SentimentScore <= 0.5 {
		t.Fatalf("SentimentScore=%v", got.SentimentScore)
	}
	if got.Emotion != EmotionNeutral {
		t.Fatalf("Emotion=%q", got.Emotion)
	}
}

func TestAnalyze_IntensifierAmplifies(t *testing.T) {
	t.Parallel()

	plain := Analyze("I am anxious")
	strong := Analyze("I am extremely anxious")
	moderate := Analyze("I am quite anxious")

	if strong.Emotion != EmotionAnxious || plain.Emotion != EmotionAnxious {
		t.Fatalf("emotions=%q,%q", strong.Emotion, plain.Emotion)
	}
	if strong.SentimentScore >= moderate.SentimentScore || moderate.SentimentScore >= plain.SentimentScore {
		t.Fatalf("strong=%v moderate=%v plain=%v", strong.SentimentScore, moderate.SentimentScore, plain.SentimentScore)
	}

	b := Breakdown("I am extremely anxious")
	if !approxEqual(b.EmotionScores[EmotionAnxious], 1.4*1.25) {
		t.Fatalf("anxious score=%v", b.EmotionScores[EmotionAnxious])
	}
}

func TestAnalyze_OnlyImmediatePreviousWordModifies(t *testing.T) {
	t.Parallel()

	b := Breakdown("not really happy")
	// "really" is the previous word, so the match is intensified, not negated
	if !approxEqual(b.EmotionScores[EmotionHappy], 1.3*1.25) {
		t.Fatalf("happy score=%v", b.EmotionScores[EmotionHappy])
	}
}

func TestAnalyze_TieKeepsFirstCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		want     string
		tiedWith string
	}{
		{text: "exhausted", want: EmotionSad, tiedWith: EmotionStressed},
		{text: "good lonely", want: EmotionHappy, tiedWith: EmotionSad},
		{text: "lonely good", want: EmotionHappy, tiedWith: EmotionSad},
	}

	for _, tt := range tests {
		b := Breakdown(tt.text)
		if !approxEqual(b.EmotionScores[tt.want], b.EmotionScores[tt.tiedWith]) {
			t.Fatalf("%q: scores not tied: %v", tt.text, b.EmotionScores)
		}
		for i := 0; i < 5; i++ {
			if got := Analyze(tt.text).Emotion; got != tt.want {
				t.Fatalf("%q: Emotion=%q want %q", tt.text, got, tt.want)
			}
		}
	}
}

func TestAnalyze_SubstringMatching(t *testing.T) {
	t.Parallel()

	// broad matching over-matches on purpose
	if got := Analyze("we walked downtown").Emotion; got != EmotionSad {
		t.Fatalf("downtown Emotion=%q", got)
	}

	b := Breakdown("unhappy")
	if !approxEqual(b.EmotionScores[EmotionHappy], 1.3) || !approxEqual(b.EmotionScores[EmotionSad], 1.3) {
		t.Fatalf("unhappy scores=%v", b.EmotionScores)
	}
	if b.Emotion != EmotionHappy {
		t.Fatalf("unhappy Emotion=%q", b.Emotion)
	}

	if got := Analyze("So happy!").Emotion; got != EmotionHappy {
		t.Fatalf("trailing punctuation Emotion=%q", got)
	}
}

func TestAnalyze_MultiWordKeywordsNeverMatch(t *testing.T) {
	t.Parallel()

	b := Breakdown("I am burnt out")
	if b.TotalMatches != 0 || b.SentimentScore != 0.5 || b.Emotion != EmotionNeutral {
		t.Fatalf("breakdown=%+v", b)
	}
}

func TestAnalyze_DensityBoost(t *testing.T) {
	t.Parallel()

	sparse := Analyze("happy the the the the the the the the the the")
	if !approxEqual(sparse.SentimentScore, 0.825) {
		t.Fatalf("sparse SentimentScore=%v", sparse.SentimentScore)
	}

	dense := Analyze("happy the")
	if !approxEqual(dense.SentimentScore, 0.825*1.1) {
		t.Fatalf("dense SentimentScore=%v", dense.SentimentScore)
	}
}

func TestAnalyze_RangeInvariant(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"very happy very happy very happy",
		"extremely anxious extremely scared extremely furious",
		"not not not sad",
		"joyful joyful joyful joyful joyful joyful",
		"overwhelmed overwhelming stressful",
		"Ünïcödé ✨ text with no matches at all",
		"hopeless helpless miserable heartbroken grief loss",
		"so so so so so so happy",
	}
	for _, text := range inputs {
		got := Analyze(text)
		if got.SentimentScore < 0 || got.SentimentScore > 1 {
			t.Fatalf("Analyze(%q).SentimentScore=%v", text, got.SentimentScore)
		}
		if !IsEmotion(got.Emotion) {
			t.Fatalf("Analyze(%q).Emotion=%q", text, got.Emotion)
		}
	}
}

func TestAnalyze_DeterministicAcrossGoroutines(t *testing.T) {
	t.Parallel()

	const text = "Work was stressful and I feel really tired but grateful for my friends"
	want := Analyze(text)

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Analyze(text); got != want {
				errs <- got.Emotion
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Fatalf("concurrent Analyze diverged: %q", e)
	}
}
