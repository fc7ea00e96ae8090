package sentiment

import (
	"context"
	"fmt"

	"github.com/spacesedan/moodflow/internal/models"
)

const SourceHuggingFace = "huggingface"

const remoteContentID = "entry"

// BatchSentimentClient is the remote sentiment analysis service.
type BatchSentimentClient interface {
	GetBatchedSentimentAnalysis(ctx context.Context, input models.SentimentAnalysisBatchRequest) (models.SentimentAnalysisBatchResponse, error)
}

// RemoteScorer uses a hosted sentiment model for polarity. The service
// returns a signed score in [-1,1].
type RemoteScorer struct {
	client BatchSentimentClient
}

func NewRemoteScorer(client BatchSentimentClient) *RemoteScorer {
	return &RemoteScorer{client: client}
}

func (r *RemoteScorer) Name() string { return SourceHuggingFace }

func (r *RemoteScorer) Score(ctx context.Context, text string) (models.AnalysisResult, error) {
	resp, err := r.client.GetBatchedSentimentAnalysis(ctx, models.SentimentAnalysisBatchRequest{
		Posts: []models.SentimentAnalysisRequest{{ContentID: remoteContentID, Text: text}},
	})
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("[RemoteScorer] request failed: %w", err)
	}

	for _, score := range resp {
		if score.ContentID != remoteContentID {
			continue
		}
		if score.SentimentScore < -1 || score.SentimentScore > 1 {
			return models.AnalysisResult{}, fmt.Errorf("%w: remote score %v outside [-1,1]", ErrMalformedResult, score.SentimentScore)
		}
		return fromPolarity(text, (score.SentimentScore+1)/2, SourceHuggingFace), nil
	}

	return models.AnalysisResult{}, fmt.Errorf("%w: no score returned for content", ErrMalformedResult)
}
