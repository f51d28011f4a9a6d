package events

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/contracts"
	"github.com/shareit/service-booking/internal/platform/domain"
	"github.com/shareit/service-booking/internal/platform/kafka"
)

// CatalogSyncer applies catalog changes to the local projections.
type CatalogSyncer interface {
	SyncItem(ctx context.Context, evt contracts.ItemUpsertedEvent) error
	SyncUser(ctx context.Context, evt contracts.UserUpsertedEvent) error
}

// CatalogEventConsumer listens to catalog events and keeps items and users in sync.
type CatalogEventConsumer struct {
	consumer *kafka.Consumer
	syncer   CatalogSyncer
	logger   *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	syncer CatalogSyncer,
	logger *zap.Logger,
) *CatalogEventConsumer {
	return &CatalogEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, contracts.TopicCatalogEvents, logger),
		syncer:   syncer,
		logger:   logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.CatalogItemUpserted:
		var evt contracts.ItemUpsertedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse ItemUpsertedEvent data", zap.Error(err))
			return nil
		}
		return c.apply(cloudEvent, c.syncer.SyncItem(ctx, evt))

	case contracts.CatalogUserUpserted:
		var evt contracts.UserUpsertedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse UserUpsertedEvent data", zap.Error(err))
			return nil
		}
		return c.apply(cloudEvent, c.syncer.SyncUser(ctx, evt))

	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// apply drops events the syncer rejects as invalid and returns storage
// failures so the consumer retries them.
func (c *CatalogEventConsumer) apply(ce kafka.CloudEvent, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrValidation) {
		c.logger.Warn("discarding invalid catalog event",
			zap.String("event_id", ce.ID),
			zap.String("type", ce.Type),
			zap.Error(err),
		)
		return nil
	}
	c.logger.Error("failed to apply catalog event",
		zap.String("event_id", ce.ID),
		zap.String("type", ce.Type),
		zap.Error(err),
	)
	return err
}
