package streams

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

type AnalysisWriter interface {
	UpdateEntryAnalysis(ctx context.Context, userID, entryID string, result models.AnalysisResult) error
}

// EntryStreamHandler scores journal entries that were inserted without an
// analysis, as seen on the entries table stream.
type EntryStreamHandler struct {
	Scorer sentiment.Scorer
	Store  AnalysisWriter
}

func NewEntryStreamHandler(scorer sentiment.Scorer, store AnalysisWriter) *EntryStreamHandler {
	return &EntryStreamHandler{Scorer: scorer, Store: store}
}

// ProcessEntryRecord returns the stored entry, or nil when the record needs
// no work.
func (h *EntryStreamHandler) ProcessEntryRecord(ctx context.Context, record events.DynamoDBEventRecord) (*models.JournalEntry, error) {
	if record.EventName != string(events.DynamoDBOperationTypeInsert) {
		slog.Debug("[EntryStream] Skipping non-INSERT record",
			slog.String("event_id", record.EventID),
			slog.String("event_name", record.EventName))
		return nil, nil
	}

	var entry models.JournalEntry
	if err := UnmarshalImage(record.Change.NewImage, &entry); err != nil {
		return nil, fmt.Errorf("[EntryStream] failed to unmarshal entry: %w", err)
	}
	if entry.IsAnalyzed() {
		return nil, nil
	}

	result, err := h.Scorer.Score(ctx, entry.Content)
	if err != nil {
		slog.Warn("[EntryStream] Scoring failed, using lexicon",
			slog.String("entry_id", entry.EntryID),
			slog.String("error", err.Error()))
		result = sentiment.Analyze(entry.Content)
	}

	if err := h.Store.UpdateEntryAnalysis(ctx, entry.UserID, entry.EntryID, result); err != nil {
		return nil, fmt.Errorf("[EntryStream] failed to store analysis: %w", err)
	}
	entry.ApplyAnalysis(result)

	slog.Info("[EntryStream] Analyzed entry",
		slog.String("entry_id", entry.EntryID),
		slog.String("emotion", entry.Emotion))
	return &entry, nil
}

// Handle processes a stream batch and reports failed records so only those
// are retried.
func (h *EntryStreamHandler) Handle(ctx context.Context, event events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
	var response events.DynamoDBEventResponse
	slog.Info("[EntryStream] Received DynamoDB event", slog.Int("record_count", len(event.Records)))

	for _, record := range event.Records {
		if _, err := h.ProcessEntryRecord(ctx, record); err != nil {
			slog.Error("[EntryStream] Record failed",
				slog.String("event_id", record.EventID),
				slog.String("error", err.Error()))
			response.BatchItemFailures = append(response.BatchItemFailures, events.DynamoDBBatchItemFailure{
				ItemIdentifier: record.Change.SequenceNumber,
			})
		}
	}
	return response, nil
}
