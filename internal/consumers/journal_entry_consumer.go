package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
	"github.com/spacesedan/moodflow/internal/utils"
)

type AnalysisWriter interface {
	UpdateEntryAnalysis(ctx context.Context, userID, entryID string, result models.AnalysisResult) error
}

// ProcessedSet skips redelivered events. Implemented by the Valkey client.
type ProcessedSet interface {
	IsProcessed(ctx context.Context, key string) bool
	MarkProcessed(ctx context.Context, key string) error
}

type KafkaConsumer interface {
	kafka_client.MessageReader
	kafka_client.MessageCommitter
}

// JournalEntryConsumer scores entries published in async analysis mode and
// writes the results back to the entry store.
type JournalEntryConsumer struct {
	Scorer       sentiment.Scorer
	Store        AnalysisWriter
	Processed    ProcessedSet // optional
	BatchTimeout time.Duration

	buffer  *utils.BatchBuffer[models.EntryEvent]
	tracker utils.MessageTracker
}

func NewJournalEntryConsumer(scorer sentiment.Scorer, store AnalysisWriter, processed ProcessedSet) *JournalEntryConsumer {
	return &JournalEntryConsumer{
		Scorer:       scorer,
		Store:        store,
		Processed:    processed,
		BatchTimeout: kafka_client.BATCH_TIMEOUT,
		buffer:       utils.NewBatchBuffer[models.EntryEvent](kafka_client.BATCH_SIZE),
	}
}

// Handle matches kafka_client.ConsumerFunc.
func (c *JournalEntryConsumer) Handle(ctx context.Context, consumer *kafka.Consumer) {
	c.Run(ctx, consumer)
}

func (c *JournalEntryConsumer) Run(ctx context.Context, consumer KafkaConsumer) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)

	ticker := time.NewTicker(c.BatchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[JournalEntryConsumer] Consumer shutting down...",
				slog.Int("uncommitted", c.buffer.Size()))
			return
		case <-ticker.C:
			c.processBatch(ctx, committer)
		default:
			msg, err := iterator.Next()
			if err != nil {
				slog.Error("[JournalEntryConsumer] Kafka Consumer Error",
					slog.String("error", err.Error()))
				continue
			}
			if msg == nil {
				continue
			}

			var event models.EntryEvent
			if err := utils.DeserializeFromJSON(msg.Value, &event); err != nil || event.EntryID == "" {
				slog.Warn("[JournalEntryConsumer] Skipping unreadable entry event",
					slog.String("offset", msg.TopicPartition.Offset.String()))
				if err := committer.Commit(msg); err != nil {
					slog.Warn("[JournalEntryConsumer] Failed to commit offset",
						slog.String("error", err.Error()))
				}
				continue
			}

			c.tracker.Track(event.EntryID, msg)
			c.buffer.Add(event)
			if c.buffer.IsFull() {
				c.processBatch(ctx, committer)
			}
		}
	}
}

func (c *JournalEntryConsumer) processBatch(ctx context.Context, committer *kafka_client.KafkaCommitHandler) {
	if !c.buffer.HasData() {
		return
	}
	c.buffer.LogBatchProcessing(kafka_client.KAFKA_TOPIC_JOURNAL_ENTRIES)
	batch := c.buffer.GetAndClear()

	for _, event := range batch {
		if c.handleEvent(ctx, event) {
			c.commit(committer, event.EntryID)
		}
	}
}

// handleEvent reports whether the event's offset can be committed.
func (c *JournalEntryConsumer) handleEvent(ctx context.Context, event models.EntryEvent) bool {
	if c.Processed != nil && c.Processed.IsProcessed(ctx, event.EntryID) {
		slog.Debug("[JournalEntryConsumer] Entry already analyzed, skipping",
			slog.String("entry_id", event.EntryID))
		return true
	}

	result, err := c.Scorer.Score(ctx, event.Content)
	if err != nil {
		slog.Warn("[JournalEntryConsumer] Scoring failed, using lexicon",
			slog.String("entry_id", event.EntryID),
			slog.String("error", err.Error()))
		result = sentiment.Analyze(event.Content)
	}

	for i := 0; i < 3; i++ {
		err = c.Store.UpdateEntryAnalysis(ctx, event.UserID, event.EntryID, result)
		if err == nil {
			break
		}
		slog.Error("[JournalEntryConsumer] Failed to write analysis",
			slog.String("entry_id", event.EntryID),
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return false
	}

	if c.Processed != nil {
		if err := c.Processed.MarkProcessed(ctx, event.EntryID); err != nil {
			slog.Warn("[JournalEntryConsumer] Failed to mark entry processed",
				slog.String("entry_id", event.EntryID),
				slog.String("error", err.Error()))
		}
	}
	return true
}

func (c *JournalEntryConsumer) commit(committer *kafka_client.KafkaCommitHandler, entryID string) {
	msg, found := c.tracker.Take(entryID)
	if !found {
		return
	}
	if err := committer.Commit(msg); err != nil {
		slog.Warn("[JournalEntryConsumer] Failed to commit offset",
			slog.String("error", err.Error()))
	}
}
