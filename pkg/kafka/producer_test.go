package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesValues(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "snappy", "events")

	if err := p.Publish(context.Background(), "", []byte("k"), map[string]int{"a": 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.PublishMessage(context.Background(), "logs", []byte("raw")); err != nil {
		t.Fatalf("PublishMessage: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.msgs))
	}
	if w.msgs[0].Topic != "events" || string(w.msgs[0].Value) != `{"a":1}` || string(w.msgs[0].Key) != "k" {
		t.Fatalf("unexpected first message %+v", w.msgs[0])
	}
	if w.msgs[1].Topic != "logs" || string(w.msgs[1].Value) != "raw" {
		t.Fatalf("unexpected second message %+v", w.msgs[1])
	}
	_ = p.Close()
	if !w.closed {
		t.Fatalf("writer not closed")
	}
}

func TestPublishRequiresTopic(t *testing.T) {
	p := newProducer(&recordingWriter{}, "snappy", "")
	if err := p.Publish(context.Background(), "", nil, "x"); err == nil {
		t.Fatalf("expected error without topic")
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&recordingWriter{err: boom}, "snappy", "events")
	if err := p.Publish(context.Background(), "", nil, "x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
