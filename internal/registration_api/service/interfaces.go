package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/registration"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/quiz-registration-service/internal/platform/gateway"
)

// RegistrationService runs the paid registration workflow
type RegistrationService interface {
	// Register creates the account and, for paid enrollees, the ledger entry and
	// enrollment. Any failure after the account is created is compensated.
	// Errors are the types declared in the registration domain package.
	Register(ctx context.Context, input *registration.Input) (*registration.Result, error)
}

// PaymentOrderService opens gateway orders ahead of checkout
type PaymentOrderService interface {
	// CreateOrder opens an order for amount (major units); zero means the registration fee.
	CreateOrder(ctx context.Context, amount float64) (*PaymentOrder, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// Notifier is told about every committed registration.
type Notifier interface {
	RegistrationCompleted(ctx context.Context, event *shared.RegistrationEvent) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type TokenIssuer interface {
	Issue(accountID uuid.UUID, role string) (string, error)
}

type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// OrderGateway is the payment gateway's order API.
type OrderGateway interface {
	CreateOrder(ctx context.Context, amount float64) (*gateway.Order, error)
	KeyID() string
}
