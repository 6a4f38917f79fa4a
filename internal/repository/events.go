package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"CryptoView/internal/domain/models"
	pkgkafka "CryptoView/pkg/kafka"
)

// KafkaEventPublisher writes domain events to a Kafka topic keyed by event key.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, ev models.Event) error {
	ev = stampEvent(ev)
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.Key), ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopEventPublisher drops events.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, models.Event) error { return nil }
func (NoopEventPublisher) Close() error { return nil }

func stampEvent(ev models.Event) models.Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Key == "" {
		ev.Key = ev.Type
	}
	return ev
}
