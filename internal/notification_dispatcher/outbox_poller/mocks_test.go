package outbox_poller

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/outbox"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingMessage(id int64, attempts int) *outbox.Message {
	enrollmentID := uuid.New()
	msg, err := outbox.NewMessage(&shared.RegistrationEvent{
		EventType:     shared.EventTypeRegistrationCompleted,
		AccountID:     uuid.New(),
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Role:          shared.RoleEnrollee,
		EnrollmentID:  &enrollmentID,
		TransactionID: "pay_1",
		CorrelationID: "corr-1",
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		panic(err)
	}
	msg.ID = id
	msg.Attempts = attempts
	return msg
}
