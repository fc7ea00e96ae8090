package kafka_client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/utils"
)

// EntryProducer publishes entry events transactionally. Transactions are
// serialized, the underlying producer allows one at a time.
type EntryProducer struct {
	producer *kafka.Producer
	topic    string
	mu       sync.Mutex
}

func NewEntryProducer(cfg KafkaConfig) (*EntryProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.Topic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.TransactionalID,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(context.Background()); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &EntryProducer{producer: p, topic: cfg.Topic}, nil
}

func (ep *EntryProducer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := ep.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	ep.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishEntryEvent sends an entry to the analysis topic, keyed by user so a
// user's entries stay on one partition.
func (ep *EntryProducer) PublishEntryEvent(ctx context.Context, event models.EntryEvent) error {
	jsonData, err := utils.SerializeToJSON(event)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to marshal entry event: %w", err)
	}

	ep.mu.Lock()
	defer ep.mu.Unlock()

	if err := ep.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &ep.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.UserID),
		Value:          jsonData,
	}

	for i := 0; i < 3; i++ {
		err = ep.producer.Produce(msg, nil)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		if abortErr := ep.producer.AbortTransaction(ctx); abortErr != nil {
			return fmt.Errorf("[KafkaClient] failed to abort transaction after produce error: %w", abortErr)
		}
		return fmt.Errorf("[KafkaClient] failed to produce entry event: %w", err)
	}

	var commitErr error
	for i := 0; i < 3; i++ {
		commitErr = ep.producer.CommitTransaction(ctx)
		if commitErr == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", commitErr.Error()))
	}
	if commitErr != nil {
		return fmt.Errorf("[KafkaClient] failed to commit transaction after 3 retries: %w", commitErr)
	}

	slog.Info("[KafkaClient] Published entry event to Kafka transactionally",
		slog.String("user_id", event.UserID),
		slog.String("entry_id", event.EntryID))
	return nil
}
