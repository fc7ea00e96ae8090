package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/moodflow/internal/models"
)

const SourceTransformer = "transformer"

// emotion labels of the distilroberta emotion models
var transformerLabels = map[string]string{
	"joy":     EmotionHappy,
	"love":    EmotionHappy,
	"sadness": EmotionSad,
	"fear":    EmotionAnxious,
	"anger":   EmotionAngry,
	"disgust": EmotionAngry,
}

// TransformerScorer runs a local ONNX emotion classifier through hugot.
type TransformerScorer struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewTransformerScorer(modelName, modelDir string) (*TransformerScorer, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("[TransformerScorer] failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[TransformerScorer] Model not found, downloading...",
			slog.String("model", modelName))
		modelPath, err = hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("[TransformerScorer] failed to download model: %w", err)
		}
		slog.Info("[TransformerScorer] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[TransformerScorer] Using existing model", slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[TransformerScorer] failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "emotionClassificationPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("[TransformerScorer] failed to create pipeline: %w", err)
	}

	return &TransformerScorer{session: session, pipeline: pipeline}, nil
}

func (t *TransformerScorer) Name() string { return SourceTransformer }

func (t *TransformerScorer) Score(ctx context.Context, text string) (models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return Analyze(text), nil
	}
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	t.mu.Lock()
	out, err := t.pipeline.RunPipeline([]string{text})
	t.mu.Unlock()
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("[TransformerScorer] inference failed: %w", err)
	}
	if out == nil || len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return models.AnalysisResult{}, fmt.Errorf("%w: empty classification output", ErrMalformedResult)
	}

	best := out.ClassificationOutputs[0][0]
	for _, c := range out.ClassificationOutputs[0][1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	return classificationResult(best.Label, float64(best.Score)), nil
}

// classificationResult turns a classifier label and its confidence into a
// result. Confidence moves sentiment away from neutral in the label's direction.
func classificationResult(label string, confidence float64) models.AnalysisResult {
	emotion, ok := transformerLabels[strings.ToLower(label)]
	if !ok {
		emotion = EmotionNeutral
	}

	confidence = clamp01(confidence)
	var sentiment float64
	switch emotion {
	case EmotionNeutral:
		sentiment = neutralBaseline
	case EmotionHappy:
		sentiment = neutralBaseline + confidence/2
	default:
		sentiment = neutralBaseline - confidence/2
	}

	return models.AnalysisResult{
		SentimentScore:   sentiment,
		Emotion:          emotion,
		ReflectivePrompt: SelectPrompt(emotion, sentiment),
		Source:           SourceTransformer,
	}
}

func (t *TransformerScorer) Close() error {
	if t.session == nil {
		return nil
	}
	return t.session.Destroy()
}
