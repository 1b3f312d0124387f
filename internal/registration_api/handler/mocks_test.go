package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/registration"
	"github.com/quiz-registration-service/internal/registration_api/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, input *registration.Input) (*registration.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Result), args.Error(1)
}

type MockPaymentOrderService struct {
	mock.Mock
}

func (m *MockPaymentOrderService) CreateOrder(ctx context.Context, amount float64) (*service.PaymentOrder, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentOrder), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

var (
	_ service.RegistrationService = (*MockRegistrationService)(nil)
	_ service.PaymentOrderService = (*MockPaymentOrderService)(nil)
	_ service.AccountService      = (*MockAccountService)(nil)
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decodeData unmarshals the "data" member of a response envelope into out.
func decodeData(t *testing.T, body []byte, out any) Response {
	t.Helper()
	var envelope Response
	require.NoError(t, json.Unmarshal(body, &envelope))
	if out != nil {
		require.NotNil(t, envelope.Data, "'data' field should not be nil")
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return envelope
}
