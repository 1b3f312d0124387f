package registration

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrDuplicateAccount is returned when the email already belongs to an account or
// an enrollment.
type ErrDuplicateAccount struct {
	Email string
}

func (e ErrDuplicateAccount) Error() string {
	return "account already exists for email: " + e.Email
}

func (e ErrDuplicateAccount) Is(target error) bool {
	_, ok := target.(ErrDuplicateAccount)
	return ok
}

// ErrPaymentDetailsMissing is returned when an enrollee submits without a complete proof.
type ErrPaymentDetailsMissing struct {
	Missing []string
}

func (e ErrPaymentDetailsMissing) Error() string {
	return "payment details missing: " + strings.Join(e.Missing, ", ")
}

func (e ErrPaymentDetailsMissing) Is(target error) bool {
	_, ok := target.(ErrPaymentDetailsMissing)
	return ok
}

// ErrPaymentVerificationFailed is returned when the signature does not match.
type ErrPaymentVerificationFailed struct {
	OrderID   string
	PaymentID string
}

func (e ErrPaymentVerificationFailed) Error() string {
	return fmt.Sprintf("payment verification failed for order %s payment %s", e.OrderID, e.PaymentID)
}

func (e ErrPaymentVerificationFailed) Is(target error) bool {
	_, ok := target.(ErrPaymentVerificationFailed)
	return ok
}

// ErrGatewayUnavailable wraps any failure talking to the payment gateway.
type ErrGatewayUnavailable struct {
	StatusCode int
	Err        error
}

func (e ErrGatewayUnavailable) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("payment gateway unavailable: %v", e.Err)
}

func (e ErrGatewayUnavailable) Unwrap() error { return e.Err }

func (e ErrGatewayUnavailable) Is(target error) bool {
	_, ok := target.(ErrGatewayUnavailable)
	return ok
}

// ErrValidationFailed carries per-field problems with the input.
type ErrValidationFailed struct {
	Fields map[string]string
}

func (e ErrValidationFailed) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, problem := range e.Fields {
		parts = append(parts, field+": "+problem)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e ErrValidationFailed) Is(target error) bool {
	_, ok := target.(ErrValidationFailed)
	return ok
}

// ErrRollbackFailed means a compensation step failed, leaving a provisional account
// behind. It needs manual cleanup.
type ErrRollbackFailed struct {
	AccountID  uuid.UUID
	Cause      error // failure that triggered the rollback
	CleanupErr error
}

func (e ErrRollbackFailed) Error() string {
	return fmt.Sprintf("rollback failed for account %s: %v (after: %v)", e.AccountID, e.CleanupErr, e.Cause)
}

// Unwrap exposes both the triggering failure and the cleanup failure.
func (e ErrRollbackFailed) Unwrap() []error {
	return []error{e.Cause, e.CleanupErr}
}

func (e ErrRollbackFailed) Is(target error) bool {
	_, ok := target.(ErrRollbackFailed)
	return ok
}

// ErrAlreadyProcessed is returned when the payment id is already recorded in the ledger.
type ErrAlreadyProcessed struct {
	TransactionID string
	AccountID     uuid.UUID // account the payment is linked to
}

func (e ErrAlreadyProcessed) Error() string {
	return fmt.Sprintf("payment %s already processed for account %s", e.TransactionID, e.AccountID)
}

func (e ErrAlreadyProcessed) Is(target error) bool {
	_, ok := target.(ErrAlreadyProcessed)
	return ok
}
