package sentiment

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/moodflow/internal/models"
)

const SourceVader = "vader"

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)

	// no smartypants: a curly "don’t" is not a negation to VADER
	plainRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: blackfriday.HTMLFlagsNone})
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText flattens a markdown journal entry into plain words.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(plainRenderer))
	plain := html.UnescapeString(tagPattern.ReplaceAllString(string(output), " "))
	return strings.Join(strings.Fields(plain), " ")
}

// VaderScorer maps the VADER compound score onto [0,1]. Entries are often
// written in markdown so they are flattened first.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Name() string { return SourceVader }

func (v *VaderScorer) Score(_ context.Context, text string) (models.AnalysisResult, error) {
	plainText := ConvertMarkdownToText(text)
	if plainText == "" {
		return fromPolarity(plainText, neutralBaseline, SourceVader), nil
	}
	compound := v.analyzer.PolarityScores(plainText).Compound
	return fromPolarity(plainText, (compound+1)/2, SourceVader), nil
}
