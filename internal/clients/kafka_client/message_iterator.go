package kafka_client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageReader is implemented by *kafka.Consumer.
type MessageReader interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
}

type KafkaMessageIterator struct {
	reader     MessageReader
	ctx        context.Context
	retryDelay time.Duration
}

func NewKafkaMessageIterator(ctx context.Context, reader MessageReader) *KafkaMessageIterator {
	return &KafkaMessageIterator{
		reader:     reader,
		ctx:        ctx,
		retryDelay: RETRY_DELAY,
	}
}

// Next returns the next message. A nil message with a nil error means nothing
// arrived within POLL_TIMEOUT, callers use it to flush partial batches.
func (it *KafkaMessageIterator) Next() (*kafka.Message, error) {
	if it.reader == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	for i := 0; i < MAX_RETRIES; i++ {
		select {
		case <-it.ctx.Done():
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, it.ctx.Err()
		default:
		}

		msg, err := it.reader.ReadMessage(POLL_TIMEOUT)
		if err == nil {
			return msg, nil
		}

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) {
			switch kafkaErr.Code() {
			case kafka.ErrTimedOut:
				return nil, nil
			case kafka.ErrAllBrokersDown:
				slog.Error("[KafkaIterator] All Kafka brokers are down. Aborting")
				return nil, err
			}
		}

		slog.Warn("[KafkaIterator] Failed to read message, retrying...",
			slog.Int("attempt", i+1),
			slog.Int("max_retries", MAX_RETRIES),
			slog.String("error", err.Error()))
		time.Sleep(it.retryDelay)
	}
	return nil, errors.New("[KafkaIterator] Failed to read message after retries")
}
