package utils

import (
	"sync"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func TestBatchBuffer(t *testing.T) {
	t.Parallel()

	b := NewBatchBuffer[int](3)
	if b.HasData() || b.GetAndClear() != nil {
		t.Fatalf("new buffer should be empty")
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			b.Add(v)
		}(i)
	}
	wg.Wait()

	if !b.IsFull() || b.Size() != 3 {
		t.Fatalf("size=%d", b.Size())
	}
	if batch := b.GetAndClear(); len(batch) != 3 {
		t.Fatalf("batch=%v", batch)
	}
	if b.HasData() {
		t.Fatalf("buffer not cleared")
	}
}

func TestMessageTracker(t *testing.T) {
	t.Parallel()

	var tracker MessageTracker
	msg := &kafka.Message{Key: []byte("u1")}
	tracker.Track("e1", msg)

	got, ok := tracker.Take("e1")
	if !ok || got != msg {
		t.Fatalf("got=%v ok=%v", got, ok)
	}
	if _, ok := tracker.Take("e1"); ok {
		t.Fatalf("message should be forgotten after Take")
	}
}

func TestDeserializeFromJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		Name string `json:"name"`
	}
	if err := DeserializeFromJSON([]byte(`{"name":"x"}`), &v); err != nil || v.Name != "x" {
		t.Fatalf("v=%+v err=%v", v, err)
	}
	if err := DeserializeFromJSON([]byte(`{`), &v); err == nil {
		t.Fatalf("expected error")
	}
	data, err := SerializeToJSON(v)
	if err != nil || string(data) != `{"name":"x"}` {
		t.Fatalf("data=%s err=%v", data, err)
	}
}
