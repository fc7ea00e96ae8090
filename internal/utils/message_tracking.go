package utils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageTracker remembers which Kafka message carried an entry so its offset
// can be committed once the entry has been written back.
type MessageTracker struct {
	messages sync.Map
}

func (t *MessageTracker) Track(entryID string, msg *kafka.Message) {
	t.messages.Store(entryID, msg)
}

// Take returns and forgets the message tracked for entryID.
func (t *MessageTracker) Take(entryID string) (*kafka.Message, bool) {
	msg, ok := t.messages.LoadAndDelete(entryID)
	if !ok {
		return nil, false
	}
	return msg.(*kafka.Message), true
}
