package repository

import (
	"context"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/kafka"
)

// PublisherTopics maps event kinds to Kafka topics. Stop and session events
// share the regime topic; they are session-level regime facts.
type PublisherTopics struct {
	Decisions string
	Regime    string
}

// KafkaPublisher delivers engine events through the shared producer.
// Decisions are keyed by instrument so per-instrument ordering holds.
type KafkaPublisher struct {
	producer *kafka.Producer
	topics   PublisherTopics
}

func NewKafkaPublisher(producer *kafka.Producer, topics PublisherTopics) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topics: topics}
}

func (p *KafkaPublisher) PublishDecision(ctx context.Context, ev models.DecisionEvent) error {
	return p.producer.Publish(ctx, p.topics.Decisions, []byte(ev.Instrument), ev)
}

func (p *KafkaPublisher) PublishRegime(ctx context.Context, ev models.RegimeEvent) error {
	return p.producer.Publish(ctx, p.topics.Regime, []byte(ev.Instrument), ev)
}

func (p *KafkaPublisher) PublishStop(ctx context.Context, ev models.StopEvent) error {
	return p.producer.Publish(ctx, p.topics.Regime, []byte("system-stop"), ev)
}

func (p *KafkaPublisher) PublishSession(ctx context.Context, ev models.SessionEvent) error {
	return p.producer.Publish(ctx, p.topics.Regime, []byte("session"), ev)
}

func (p *KafkaPublisher) Close() error { return p.producer.Close() }
