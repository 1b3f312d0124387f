package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quiz-registration-service/internal/domain/outbox"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/quiz-registration-service/internal/platform/messaging/producers"
)

// EventPublisher moves one outbox message onto the message bus
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher with a Kafka producer
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes the message payload keyed by account id and marks the message
// PROCESSED. Payloads that cannot be decoded are parked as FAILED_TO_PUBLISH.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to decode registration event from outbox payload",
			"outbox_id", message.ID, "account_id", message.AccountID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error",
				"outbox_id", message.ID, "update_error", updateErr,
			)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.AccountID.String(), event); err != nil {
		return fmt.Errorf("publish outbox %d failed: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "account_id", event.AccountID.String(), "error", err,
		)
		return fmt.Errorf("event for outbox %d published, but failed to mark it PROCESSED: %w", message.ID, err)
	}

	logger.Info("Registration event published",
		"outbox_id", message.ID,
		"account_id", event.AccountID.String(),
		"event_type", string(event.EventType),
	)
	return nil
}
