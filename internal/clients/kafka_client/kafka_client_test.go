package kafka_client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type scriptedReader struct {
	errs []error
	msg  *kafka.Message
	n    int
}

func (r *scriptedReader) ReadMessage(time.Duration) (*kafka.Message, error) {
	i := r.n
	r.n++
	if i < len(r.errs) {
		return nil, r.errs[i]
	}
	return r.msg, nil
}

func newTestIterator(ctx context.Context, reader MessageReader) *KafkaMessageIterator {
	it := NewKafkaMessageIterator(ctx, reader)
	it.retryDelay = 0
	return it
}

func TestIterator_TimeoutReturnsNoMessage(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{errs: []error{kafka.NewError(kafka.ErrTimedOut, "timed out", false)}}
	msg, err := newTestIterator(context.Background(), reader).Next()
	if msg != nil || err != nil {
		t.Fatalf("msg=%v err=%v", msg, err)
	}
}

func TestIterator_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	want := &kafka.Message{Value: []byte("{}")}
	reader := &scriptedReader{errs: []error{errors.New("boom"), errors.New("boom")}, msg: want}

	msg, err := newTestIterator(context.Background(), reader).Next()
	if err != nil || msg != want {
		t.Fatalf("msg=%v err=%v", msg, err)
	}
	if reader.n != 3 {
		t.Fatalf("reads=%d", reader.n)
	}
}

func TestIterator_AbortsWhenBrokersDown(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{errs: []error{kafka.NewError(kafka.ErrAllBrokersDown, "down", false)}}
	if _, err := newTestIterator(context.Background(), reader).Next(); err == nil {
		t.Fatalf("expected error")
	}
	if reader.n != 1 {
		t.Fatalf("reads=%d", reader.n)
	}
}

func TestIterator_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	errs := make([]error, MAX_RETRIES)
	for i := range errs {
		errs[i] = errors.New("boom")
	}
	if _, err := newTestIterator(context.Background(), &scriptedReader{errs: errs}).Next(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIterator_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestIterator(ctx, &scriptedReader{}).Next(); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

type flakyCommitter struct {
	failures int
	calls    int
}

func (c *flakyCommitter) CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, errors.New("commit failed")
	}
	return []kafka.TopicPartition{m.TopicPartition}, nil
}

func TestCommitHandler_Retries(t *testing.T) {
	t.Parallel()

	committer := &flakyCommitter{failures: 2}
	handler := NewCommitHandler(context.Background(), committer)
	handler.retryDelay = 0

	if err := handler.Commit(&kafka.Message{}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if committer.calls != 3 {
		t.Fatalf("calls=%d", committer.calls)
	}

	committer = &flakyCommitter{failures: MAX_RETRIES}
	handler = NewCommitHandler(context.Background(), committer)
	handler.retryDelay = 0
	if err := handler.Commit(&kafka.Message{}); err == nil {
		t.Fatalf("expected error after %d failures", MAX_RETRIES)
	}
}
