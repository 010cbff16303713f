package repository

import (
	"context"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	pkgkafka "StockLens/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka, keyed by ticker.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) domrepo.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, ev models.SignalEvent) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:     []byte(ev.Ticker),
		Value:   ev,
		Headers: map[string]string{"kind": ev.Kind},
	}})
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops every signal.
type NoopPublisher struct{}

func (NoopPublisher) PublishSignal(context.Context, models.SignalEvent) error { return nil }
func (NoopPublisher) Close() error                                            { return nil }
