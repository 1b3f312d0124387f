package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quiz-registration-service/internal/domain/shared"
)

// InvitationDispatchService validates events and hands them to the invitation sender.
type InvitationDispatchService struct {
	sender InvitationSender
	logger *slog.Logger
}

func NewInvitationDispatchService(logger *slog.Logger, sender InvitationSender) *InvitationDispatchService {
	return &InvitationDispatchService{
		sender: sender,
		logger: logger,
	}
}

func (s *InvitationDispatchService) Dispatch(ctx context.Context, event *shared.RegistrationEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if err := s.sender.SendConfirmation(ctx, event); err != nil {
		logger.Error("Failed to send registration confirmation",
			"account_id", event.AccountID.String(),
			"error", err,
		)
		return fmt.Errorf("send confirmation for account %s: %w", event.AccountID, err)
	}

	logger.Info("Registration confirmation dispatched",
		"account_id", event.AccountID.String(),
		"role", string(event.Role),
	)
	return nil
}

// DeferredInvitationSender records that a confirmation is owed without sending anything.
// Email delivery is not wired yet.
type DeferredInvitationSender struct {
	logger *slog.Logger
}

func NewDeferredInvitationSender(logger *slog.Logger) *DeferredInvitationSender {
	return &DeferredInvitationSender{logger: logger}
}

func (s *DeferredInvitationSender) SendConfirmation(_ context.Context, event *shared.RegistrationEvent) error {
	attrs := []any{
		"account_id", event.AccountID.String(),
		"email", event.Email,
	}
	if event.EnrollmentID != nil {
		attrs = append(attrs, "enrollment_id", event.EnrollmentID.String())
	}
	s.logger.Info("Confirmation email deferred", attrs...)
	return nil
}
