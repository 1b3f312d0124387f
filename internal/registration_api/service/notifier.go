package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quiz-registration-service/internal/domain/outbox"
	"github.com/quiz-registration-service/internal/domain/shared"
)

// OutboxNotifier stores completed registrations in the outbox for the dispatcher.
type OutboxNotifier struct {
	logger     *slog.Logger
	outboxRepo outbox.Repository
}

func NewOutboxNotifier(logger *slog.Logger, outboxRepo outbox.Repository) *OutboxNotifier {
	return &OutboxNotifier{
		logger:     logger,
		outboxRepo: outboxRepo,
	}
}

func (n *OutboxNotifier) RegistrationCompleted(ctx context.Context, event *shared.RegistrationEvent) error {
	msg, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}

	if err := n.outboxRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to store outbox message: %w", err)
	}

	n.logger.Debug("Registration event stored in outbox",
		"outbox_id", msg.ID,
		"account_id", event.AccountID.String(),
	)
	return nil
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) RegistrationCompleted(context.Context, *shared.RegistrationEvent) error {
	return nil
}
