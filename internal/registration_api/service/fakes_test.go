package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/enrollment"
	"github.com/quiz-registration-service/internal/domain/ledger"
	"github.com/quiz-registration-service/internal/domain/shared"
)

// In-memory stores with the same uniqueness rules as the real ones.

type memAccounts struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*account.Account
	createErr error
	deleteErr error
	deletes   int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[uuid.UUID]*account.Account{}}
}

func (r *memAccounts) Create(_ context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == acc.Email {
			return account.ErrDuplicateEmail{Email: acc.Email}
		}
	}
	stored := *acc
	r.byID[acc.ID] = &stored
	return nil
}

func (r *memAccounts) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	return acc, nil
}

func (r *memAccounts) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.byID {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, nil
}

// Delete fails on a canceled context like a real driver would.
func (r *memAccounts) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return account.ErrAccountNotFound{AccountID: id}
	}
	delete(r.byID, id)
	return nil
}

func (r *memAccounts) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// staleEmailAccounts misses the first email lookup of each registration, as a request
// that raced another one would.
type staleEmailAccounts struct {
	*memAccounts
	lookups int
}

func (r *staleEmailAccounts) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	r.lookups++
	if r.lookups%2 == 1 {
		return nil, nil
	}
	return r.memAccounts.GetByEmail(ctx, email)
}

type staleEmailEnrollments struct {
	*memEnrollments
}

func (staleEmailEnrollments) GetByEmail(context.Context, string) (*enrollment.Enrollment, error) {
	return nil, nil
}

type memEnrollments struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*enrollment.Enrollment
	createErr error
}

func newMemEnrollments() *memEnrollments {
	return &memEnrollments{byID: map[uuid.UUID]*enrollment.Enrollment{}}
}

func (r *memEnrollments) Create(_ context.Context, e *enrollment.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if err := e.Validate(); err != nil {
		return err
	}
	for _, existing := range r.byID {
		if existing.Email == e.Email {
			return enrollment.ErrDuplicateEnrollment{Email: e.Email}
		}
	}
	stored := *e
	r.byID[e.ID] = &stored
	return nil
}

func (r *memEnrollments) GetByID(_ context.Context, id uuid.UUID) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, enrollment.ErrEnrollmentNotFound{EnrollmentID: id}
	}
	return e, nil
}

func (r *memEnrollments) GetByEmail(_ context.Context, email string) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, nil
}

func (r *memEnrollments) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return enrollment.ErrEnrollmentNotFound{EnrollmentID: id}
	}
	delete(r.byID, id)
	return nil
}

func (r *memEnrollments) all() []*enrollment.Enrollment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*enrollment.Enrollment, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out
}

type memLedger struct {
	mu        sync.Mutex
	byTxID    map[string]*ledger.Entry
	createErr error
}

func newMemLedger() *memLedger {
	return &memLedger{byTxID: map[string]*ledger.Entry{}}
}

func (r *memLedger) Create(_ context.Context, e *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := r.byTxID[e.TransactionID]; ok {
		return ledger.ErrDuplicateEntry{TransactionID: e.TransactionID}
	}
	stored := *e
	r.byTxID[e.TransactionID] = &stored
	return nil
}

func (r *memLedger) GetByTransactionID(_ context.Context, transactionID string) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byTxID[transactionID]
	if !ok {
		return nil, ledger.ErrEntryNotFound{TransactionID: transactionID}
	}
	return e, nil
}

func (r *memLedger) all() []*ledger.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ledger.Entry, 0, len(r.byTxID))
	for _, e := range r.byTxID {
		out = append(out, e)
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*shared.RegistrationEvent
	err    error
}

func (n *recordingNotifier) RegistrationCompleted(_ context.Context, event *shared.RegistrationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

type verifierFunc func(orderID, paymentID, signature string) bool

func (f verifierFunc) Verify(orderID, paymentID, signature string) bool {
	return f(orderID, paymentID, signature)
}

type failingTokenIssuer struct{}

func (failingTokenIssuer) Issue(uuid.UUID, string) (string, error) {
	return "", context.DeadlineExceeded
}
