package service

import (
	"context"
	"log/slog"

	"github.com/quiz-registration-service/internal/domain/registration"
)

// PaymentOrder is what a client needs to open the gateway checkout.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // Minor units
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// PaymentOrderServiceImpl implements the PaymentOrderService interface
type PaymentOrderServiceImpl struct {
	logger          *slog.Logger
	gateway         OrderGateway
	registrationFee float64
}

// NewPaymentOrderService creates a new payment order service. registrationFee is in
// major currency units.
func NewPaymentOrderService(logger *slog.Logger, gateway OrderGateway, registrationFee float64) PaymentOrderService {
	return &PaymentOrderServiceImpl{
		logger:          logger,
		gateway:         gateway,
		registrationFee: registrationFee,
	}
}

// CreateOrder opens a gateway order. Orders are never cancelled from this side.
func (s *PaymentOrderServiceImpl) CreateOrder(ctx context.Context, amount float64) (*PaymentOrder, error) {
	if amount < 0 {
		return nil, registration.ErrValidationFailed{Fields: map[string]string{"amount": "must not be negative"}}
	}
	if amount == 0 {
		amount = s.registrationFee
	}

	order, err := s.gateway.CreateOrder(ctx, amount)
	if err != nil {
		s.logger.Error("Failed to create payment order", "amount", amount, "error", err)
		return nil, err
	}

	s.logger.Info("Payment order created",
		"order_id", order.ID,
		"amount", order.AmountMinorUnits,
		"currency", order.Currency,
		"receipt", order.Receipt,
	)

	return &PaymentOrder{
		OrderID:  order.ID,
		Amount:   order.AmountMinorUnits,
		Currency: order.Currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}
