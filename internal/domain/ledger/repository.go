package ledger

import (
	"context"
)

// Repository is append-only: entries are never updated or deleted.
type Repository interface {
	// Create writes the entry. A reused transaction id yields ErrDuplicateEntry.
	Create(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Entry, error)
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	TransactionID string
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.TransactionID
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	// An empty target TransactionID matches any ErrEntryNotFound
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateEntry indicates transaction uniqueness violation
type ErrDuplicateEntry struct {
	TransactionID string
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.TransactionID
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}
