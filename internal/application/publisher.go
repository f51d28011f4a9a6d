package application

import (
	"context"

	"github.com/shareit/service-booking/internal/platform/kafka"
)

const eventSource = "service-booking"

// EventPublisher delivers CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// NoopPublisher discards every event. It is used when Kafka is disabled.
type NoopPublisher struct{}

// PublishEvent implements EventPublisher.
func (NoopPublisher) PublishEvent(context.Context, string, string, kafka.CloudEvent) error {
	return nil
}
