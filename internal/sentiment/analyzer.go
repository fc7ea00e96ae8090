package sentiment

import (
	"math"
	"strings"

	"github.com/spacesedan/moodflow/internal/models"
)

const (
	SourceLexicon = "lexicon"

	neutralBaseline = 0.5
	// texts where more than a tenth of the words matched get a confidence boost
	densityThreshold = 0.1
	densityBoost     = 1.1
)

// scoreboard accumulates a single pass over the tokens.
type scoreboard struct {
	emotionScores map[string]float64
	totalMatches  int
	sentimentSum  float64
	wordCount     int
}

func newScoreboard(wordCount int) *scoreboard {
	scores := make(map[string]float64, len(Categories))
	for _, c := range Categories {
		scores[c.Label] = 0
	}
	return &scoreboard{emotionScores: scores, wordCount: wordCount}
}

func (s *scoreboard) record(label string, score float64) {
	s.emotionScores[label] += score
	s.totalMatches++
	if label == EmotionHappy {
		s.sentimentSum += score
	} else {
		s.sentimentSum -= score * negativeShare
	}
}

// matches uses substring containment, so "downtown" also hits "down".
func matches(token, keyword string) bool {
	return token == keyword || strings.Contains(token, keyword)
}

func scoreTokens(tokens Tokens) *scoreboard {
	board := newScoreboard(tokens.Len())

	for i := 0; i < tokens.Len(); i++ {
		word := tokens.At(i)
		prev := tokens.Prev(i)

		negated := isNegation(prev)
		intensity := intensityFor(prev)

		for _, category := range Categories {
			for _, keyword := range category.Keywords {
				if !matches(word, keyword) {
					continue
				}
				score := category.Weight * intensity
				if negated {
					score *= negationFactor
				}
				board.record(category.Label, score)
			}
		}
	}

	return board
}

// dominantEmotion keeps the first category with the strictly highest positive score.
func (s *scoreboard) dominantEmotion() string {
	detected := EmotionNeutral
	maxScore := 0.0
	for _, c := range Categories {
		if score := s.emotionScores[c.Label]; score > maxScore {
			maxScore = score
			detected = c.Label
		}
	}
	return detected
}

func (s *scoreboard) normalizedSentiment() float64 {
	if s.totalMatches == 0 {
		return neutralBaseline
	}

	sentiment := neutralBaseline + s.sentimentSum/(float64(s.totalMatches)*4)

	density := float64(s.totalMatches) / math.Max(float64(s.wordCount), 1)
	if density > densityThreshold {
		sentiment *= densityBoost
	}

	return clamp01(sentiment)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Analyze scores text for sentiment and dominant emotion and picks a
// reflective prompt. It is pure and safe for concurrent use.
func Analyze(text string) models.AnalysisResult {
	return Breakdown(text).AnalysisResult
}

// Breakdown runs the same pass as Analyze and keeps the per-emotion scores.
func Breakdown(text string) models.AnalysisBreakdown {
	board := scoreTokens(Tokenize(text))

	emotion := board.dominantEmotion()
	sentiment := board.normalizedSentiment()

	return models.AnalysisBreakdown{
		AnalysisResult: models.AnalysisResult{
			SentimentScore:   sentiment,
			Emotion:          emotion,
			ReflectivePrompt: SelectPrompt(emotion, sentiment),
			Source:           SourceLexicon,
		},
		EmotionScores: board.emotionScores,
		TotalMatches:  board.totalMatches,
		WordCount:     board.wordCount,
		SentimentSum:  board.sentimentSum,
	}
}

// DominantEmotion returns only the lexicon's emotion label for text. Scorers
// that produce polarity without an emotion use it.
func DominantEmotion(text string) string {
	return scoreTokens(Tokenize(text)).dominantEmotion()
}
