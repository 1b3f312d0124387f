package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines account persistence operations
type Repository interface {
	// Create inserts a new account. A taken email yields ErrDuplicateEmail.
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// GetByEmail returns nil, nil when no account uses the email.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is matches any ErrAccountNotFound when the target has no ID.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.AccountID == uuid.Nil || t.AccountID == e.AccountID
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "account with email already exists: " + e.Email
}

func (e ErrDuplicateEmail) Is(target error) bool {
	t, ok := target.(ErrDuplicateEmail)
	if !ok {
		return false
	}
	return t.Email == "" || t.Email == e.Email
}
