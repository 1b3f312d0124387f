package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/shared"
)

var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidKind          = errors.New("invalid entry kind")
	ErrInvalidStatus        = errors.New("invalid entry status")
	ErrMissingTransactionID = errors.New("transaction id cannot be empty")
	ErrMissingAccountID     = errors.New("account id is required")
)

// Entry is an immutable record of money moving. TransactionID is the gateway payment id
// and is unique across the ledger.
type Entry struct {
	ID            uuid.UUID          `json:"id" bson:"_id"`
	Kind          shared.EntryKind   `json:"kind" bson:"kind"`
	Amount        int64              `json:"amount" bson:"amount"` // Minor units
	TransactionID string             `json:"transaction_id" bson:"transaction_id"`
	OrderID       string             `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Status        shared.EntryStatus `json:"status" bson:"status"`
	Source        string             `json:"source,omitempty" bson:"source,omitempty"`
	AccountID     uuid.UUID          `json:"account_id" bson:"account_id"`
	EnrollmentID  *uuid.UUID         `json:"enrollment_id,omitempty" bson:"enrollment_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// NewIncome builds a completed income entry for a verified payment.
func NewIncome(transactionID, orderID string, amount int64, accountID uuid.UUID, enrollmentID *uuid.UUID, source string) (*Entry, error) {
	e := &Entry{
		ID:            uuid.New(),
		Kind:          shared.EntryKindIncome,
		Amount:        amount,
		TransactionID: strings.TrimSpace(transactionID),
		OrderID:       orderID,
		Status:        shared.EntryStatusCompleted,
		Source:        source,
		AccountID:     accountID,
		EnrollmentID:  enrollmentID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the invariants a store enforces before writing.
func (e *Entry) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if e.TransactionID == "" {
		return ErrMissingTransactionID
	}
	if e.AccountID == uuid.Nil {
		return ErrMissingAccountID
	}
	return nil
}
