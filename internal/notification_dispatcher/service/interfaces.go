package service

import (
	"context"

	"github.com/quiz-registration-service/internal/domain/shared"
)

// DispatchService handles one consumed registration event.
type DispatchService interface {
	Dispatch(ctx context.Context, event *shared.RegistrationEvent) error
}

// InvitationSender delivers the confirmation message for a completed registration.
type InvitationSender interface {
	SendConfirmation(ctx context.Context, event *shared.RegistrationEvent) error
}
