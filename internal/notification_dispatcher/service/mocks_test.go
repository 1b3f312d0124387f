package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockDispatchService struct {
	mock.Mock
}

func (m *MockDispatchService) Dispatch(ctx context.Context, event *shared.RegistrationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockInvitationSender struct {
	mock.Mock
}

func (m *MockInvitationSender) SendConfirmation(ctx context.Context, event *shared.RegistrationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completedEvent() *shared.RegistrationEvent {
	return &shared.RegistrationEvent{
		EventType:     shared.EventTypeRegistrationCompleted,
		AccountID:     uuid.New(),
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Role:          shared.RoleEnrollee,
		CorrelationID: "corr-1",
		OccurredAt:    time.Now().UTC(),
	}
}
