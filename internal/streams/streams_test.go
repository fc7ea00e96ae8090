package streams

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

type recordingWriter struct {
	updates map[string]models.AnalysisResult
	failFor string
}

func (w *recordingWriter) UpdateEntryAnalysis(_ context.Context, _, entryID string, result models.AnalysisResult) error {
	if entryID == w.failFor {
		return errors.New("write failed")
	}
	if w.updates == nil {
		w.updates = map[string]models.AnalysisResult{}
	}
	w.updates[entryID] = result
	return nil
}

func insertRecord(seq, entryID, content string, extra map[string]events.DynamoDBAttributeValue) events.DynamoDBEventRecord {
	image := map[string]events.DynamoDBAttributeValue{
		"user_id":  events.NewStringAttribute("user-1"),
		"entry_id": events.NewStringAttribute(entryID),
		"content":  events.NewStringAttribute(content),
	}
	for k, v := range extra {
		image[k] = v
	}
	return events.DynamoDBEventRecord{
		EventID:   seq,
		EventName: string(events.DynamoDBOperationTypeInsert),
		Change: events.DynamoDBStreamRecord{
			SequenceNumber: seq,
			NewImage:       image,
		},
	}
}

func TestUnmarshalImage(t *testing.T) {
	t.Parallel()

	image := map[string]events.DynamoDBAttributeValue{
		"user_id":   events.NewStringAttribute("user-1"),
		"entry_id":  events.NewStringAttribute("e1"),
		"content":   events.NewStringAttribute("hello"),
		"sentiment": events.NewNumberAttribute("0.75"),
	}
	var entry models.JournalEntry
	if err := UnmarshalImage(image, &entry); err != nil {
		t.Fatalf("err=%v", err)
	}
	if entry.UserID != "user-1" || entry.EntryID != "e1" || entry.Content != "hello" {
		t.Fatalf("entry=%+v", entry)
	}
	if entry.Sentiment == nil || *entry.Sentiment != 0.75 {
		t.Fatalf("sentiment=%v", entry.Sentiment)
	}
}

func TestUnmarshalImageNil(t *testing.T) {
	t.Parallel()

	var entry models.JournalEntry
	if err := UnmarshalImage(nil, &entry); !errors.Is(err, ErrNilImage) {
		t.Fatalf("err=%v", err)
	}
}

func TestToAttributeValueNested(t *testing.T) {
	t.Parallel()

	v := events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
		"tags": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewStringAttribute("a"),
			events.NewBooleanAttribute(true),
		}),
	})
	if _, err := toAttributeValue(v); err != nil {
		t.Fatalf("err=%v", err)
	}
}

func TestHandleScoresInsertedEntries(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	h := NewEntryStreamHandler(sentiment.NewLexiconScorer(), writer)

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		insertRecord("1", "e1", "I feel so happy today", nil),
		insertRecord("2", "e2", "already done", map[string]events.DynamoDBAttributeValue{
			"emotion": events.NewStringAttribute("sad"),
		}),
		{
			EventID:   "3",
			EventName: string(events.DynamoDBOperationTypeModify),
			Change:    events.DynamoDBStreamRecord{SequenceNumber: "3"},
		},
	}}

	resp, err := h.Handle(context.Background(), event)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(resp.BatchItemFailures) != 0 {
		t.Fatalf("failures=%v", resp.BatchItemFailures)
	}
	if len(writer.updates) != 1 {
		t.Fatalf("updates=%v", writer.updates)
	}
	if got := writer.updates["e1"].Emotion; got != "happy" {
		t.Fatalf("emotion=%q", got)
	}
}

func TestHandleReportsFailures(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{failFor: "e2"}
	h := NewEntryStreamHandler(sentiment.NewLexiconScorer(), writer)

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		insertRecord("seq-1", "e1", "calm morning", nil),
		insertRecord("seq-2", "e2", "so worried", nil),
	}}

	resp, err := h.Handle(context.Background(), event)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "seq-2" {
		t.Fatalf("failures=%v", resp.BatchItemFailures)
	}
}
