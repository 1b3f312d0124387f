package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/quiz-registration-service/internal/notification_dispatcher/service"
	"github.com/quiz-registration-service/internal/platform/messaging/producers"
)

// RegistrationEventHandler handles registration events consumed from Kafka
type RegistrationEventHandler struct {
	dispatchService service.DispatchService
	dlq             producers.DeadLetterPublisher
	logger          *slog.Logger
}

func NewRegistrationEventHandler(
	logger *slog.Logger,
	dispatchService service.DispatchService,
	dlq producers.DeadLetterPublisher,
) *RegistrationEventHandler {
	return &RegistrationEventHandler{
		dispatchService: dispatchService,
		dlq:             dlq,
		logger:          logger,
	}
}

// HandleMessage dispatches one message. A nil return commits the offset; malformed
// messages are parked on the DLQ when one is configured.
func (h *RegistrationEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.RegistrationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.park(ctx, key, value, "Failed to unmarshal registration event", err)
	}
	if err := event.Validate(); err != nil {
		return h.park(ctx, key, value, "Registration event failed validation", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received registration event",
		"account_id", event.AccountID.String(),
		"event_type", string(event.EventType),
	)

	if err := h.dispatchService.Dispatch(ctx, &event); err != nil {
		return fmt.Errorf("dispatching registration event for account %s failed: %w", event.AccountID, err)
	}
	return nil
}

func (h *RegistrationEventHandler) park(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error(reason, "error", cause, "message_key", string(key))

	if h.dlq != nil {
		dlqReason := fmt.Sprintf("%s: %s", reason, cause.Error())
		if dlqErr := h.dlq.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", reason, cause)
}
