package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/enrollment"
	"github.com/quiz-registration-service/internal/domain/registration"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/quiz-registration-service/internal/platform/correlation"
	"github.com/quiz-registration-service/internal/platform/gateway"
	"github.com/quiz-registration-service/internal/platform/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testGatewaySecret = "test-gateway-secret"
	testDefaultFee    = int64(500)
)

type registrationFixture struct {
	accounts    *memAccounts
	enrollments *memEnrollments
	ledger      *memLedger
	notifier    *recordingNotifier
	verifier    SignatureVerifier
	tokens      TokenIssuer
	issuer      *security.TokenIssuer
}

func newRegistrationFixture() *registrationFixture {
	issuer := security.NewTokenIssuer("test-jwt-secret", "quiz-registration", time.Hour)
	return &registrationFixture{
		accounts:    newMemAccounts(),
		enrollments: newMemEnrollments(),
		ledger:      newMemLedger(),
		notifier:    &recordingNotifier{},
		verifier:    gateway.NewVerifier(testGatewaySecret),
		tokens:      issuer,
		issuer:      issuer,
	}
}

func (f *registrationFixture) service() RegistrationService {
	return NewRegistrationService(discardLogger(), RegistrationDependencies{
		Accounts:    f.accounts,
		Enrollments: f.enrollments,
		Ledger:      f.ledger,
		Hasher:      security.NewPasswordHasher(bcrypt.MinCost),
		Tokens:      f.tokens,
		Verifier:    f.verifier,
		Notifier:    f.notifier,
		DefaultFee:  testDefaultFee,
	})
}

func (f *registrationFixture) assertNothingPersisted(t *testing.T) {
	t.Helper()
	assert.Zero(t, f.accounts.count(), "no account should remain")
	assert.Empty(t, f.enrollments.all(), "no enrollment should be written")
	assert.Empty(t, f.ledger.all(), "no ledger entry should be written")
}

func enrolleeInput(email, orderID, paymentID string, amount int64) *registration.Input {
	return &registration.Input{
		Name:     "Asha Rao",
		Email:    email,
		Password: "secret123",
		Role:     shared.RoleEnrollee,
		Enrollment: &registration.EnrollmentDetails{
			Phone:  "9876543210",
			School: "Kendriya Vidyalaya",
			Class:  "10",
			City:   "Pune",
			State:  "Maharashtra",
			Age:    15,
			Gender: "female",
		},
		Proof: &registration.PaymentProof{
			PaymentID: paymentID,
			OrderID:   orderID,
			Signature: gateway.Sign(orderID, paymentID, testGatewaySecret),
			Amount:    amount,
		},
	}
}

func TestRegister_PaidEnrollee(t *testing.T) {
	f := newRegistrationFixture()
	ctx := correlation.WithID(context.Background(), "corr-1")

	result, err := f.service().Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Equal(t, 1, f.accounts.count())
	acc, err := f.accounts.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.NotEqual(t, "secret123", acc.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("secret123")))
	assert.Equal(t, "9876543210", acc.Phone)

	enrollments := f.enrollments.all()
	require.Len(t, enrollments, 1)
	enr := enrollments[0]
	assert.Equal(t, shared.PaymentStatusPaid, enr.PaymentStatus)
	assert.Equal(t, int64(500), enr.Amount)
	assert.Equal(t, "pay_1", enr.PaymentID)
	assert.Equal(t, "order_1", enr.OrderID)
	require.NotNil(t, enr.PaymentDate)
	require.NotNil(t, enr.AccountID)
	assert.Equal(t, acc.ID, *enr.AccountID)

	entries := f.ledger.all()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, int64(500), entry.Amount)
	assert.Equal(t, shared.EntryKindIncome, entry.Kind)
	assert.Equal(t, shared.EntryStatusCompleted, entry.Status)
	assert.Equal(t, "pay_1", entry.TransactionID)
	assert.Equal(t, acc.ID, entry.AccountID)
	require.NotNil(t, entry.EnrollmentID)
	assert.Equal(t, enr.ID, *entry.EnrollmentID)

	assert.Equal(t, acc.ID, result.Account.ID)
	require.NotNil(t, result.EnrollmentID)
	assert.Equal(t, enr.ID, *result.EnrollmentID)
	assert.Equal(t, "pay_1", result.TransactionID)

	claims, err := f.issuer.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
	assert.Equal(t, string(shared.RoleEnrollee), claims.Role)

	require.Len(t, f.notifier.events, 1)
	event := f.notifier.events[0]
	assert.Equal(t, shared.EventTypeRegistrationCompleted, event.EventType)
	assert.Equal(t, acc.ID, event.AccountID)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, "pay_1", event.TransactionID)
}

func TestRegister_ZeroAmountUsesRegistrationFee(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.service().Register(context.Background(), enrolleeInput("fee@x.com", "order_f", "pay_f", 0))
	require.NoError(t, err)

	entries := f.ledger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, testDefaultFee, entries[0].Amount)
	assert.Equal(t, testDefaultFee, f.enrollments.all()[0].Amount)
}

func TestRegister_DuplicateEmailWithNewPayment(t *testing.T) {
	f := newRegistrationFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)

	_, err = svc.Register(ctx, enrolleeInput("A@X.com ", "order_2", "pay_2", 500))
	assert.ErrorIs(t, err, registration.ErrDuplicateAccount{})

	assert.Equal(t, 1, f.accounts.count())
	assert.Len(t, f.ledger.all(), 1)
	assert.Len(t, f.enrollments.all(), 1)
}

func TestRegister_ResubmittedProofSameEmail(t *testing.T) {
	f := newRegistrationFixture()
	svc := f.service()
	ctx := context.Background()

	first, err := svc.Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)

	_, err = svc.Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	var processed registration.ErrAlreadyProcessed
	require.ErrorAs(t, err, &processed)
	assert.Equal(t, "pay_1", processed.TransactionID)
	assert.Equal(t, first.Account.ID, processed.AccountID)

	assert.Len(t, f.ledger.all(), 1)
	assert.Equal(t, 1, f.accounts.count())
}

func TestRegister_ReusedProofDifferentEmail(t *testing.T) {
	f := newRegistrationFixture()
	svc := f.service()
	ctx := context.Background()

	first, err := svc.Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)

	_, err = svc.Register(ctx, enrolleeInput("b@x.com", "order_1", "pay_1", 500))
	var processed registration.ErrAlreadyProcessed
	require.ErrorAs(t, err, &processed)
	assert.Equal(t, first.Account.ID, processed.AccountID)

	other, err := f.accounts.GetByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Nil(t, other, "provisional account should be compensated")
	assert.Len(t, f.ledger.all(), 1)
	assert.Len(t, f.enrollments.all(), 1)
}

func TestRegister_ConcurrentSamePayment(t *testing.T) {
	f := newRegistrationFixture()
	svc := f.service()

	emails := []string{"c1@x.com", "c2@x.com", "c3@x.com", "c4@x.com"}
	errs := make([]error, len(emails))

	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), enrolleeInput(email, "order_c", "pay_c", 500))
		}(i, email)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, registration.ErrAlreadyProcessed{})
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.ledger.all(), 1)
	assert.Len(t, f.enrollments.all(), 1)
	assert.Equal(t, 1, f.accounts.count())
}

func TestRegister_MissingPaymentDetails(t *testing.T) {
	t.Run("ProofOmitted", func(t *testing.T) {
		f := newRegistrationFixture()
		input := enrolleeInput("a@x.com", "order_1", "pay_1", 500)
		input.Proof = nil

		_, err := f.service().Register(context.Background(), input)
		var missing registration.ErrPaymentDetailsMissing
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"payment_id", "order_id", "signature"}, missing.Missing)
		f.assertNothingPersisted(t)
		assert.Equal(t, 1, f.accounts.deletes)
	})

	t.Run("SignatureOmitted", func(t *testing.T) {
		f := newRegistrationFixture()
		input := enrolleeInput("a@x.com", "order_1", "pay_1", 500)
		input.Proof.Signature = ""

		_, err := f.service().Register(context.Background(), input)
		var missing registration.ErrPaymentDetailsMissing
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"signature"}, missing.Missing)
		f.assertNothingPersisted(t)
	})
}

func TestRegister_CorruptedSignature(t *testing.T) {
	f := newRegistrationFixture()
	input := enrolleeInput("a@x.com", "order_1", "pay_1", 500)
	sig := []byte(input.Proof.Signature)
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	input.Proof.Signature = string(sig)

	_, err := f.service().Register(context.Background(), input)
	assert.ErrorIs(t, err, registration.ErrPaymentVerificationFailed{})
	f.assertNothingPersisted(t)
	assert.Empty(t, f.notifier.events)
}

func TestRegister_Administrator(t *testing.T) {
	f := newRegistrationFixture()
	input := &registration.Input{
		Name:     "Admin",
		Email:    "admin@x.com",
		Password: "secret123",
		Role:     shared.RoleAdministrator,
	}

	result, err := f.service().Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, f.accounts.count())
	assert.Empty(t, f.enrollments.all())
	assert.Empty(t, f.ledger.all())
	assert.Nil(t, result.EnrollmentID)
	assert.Empty(t, result.TransactionID)
	assert.Equal(t, shared.RoleAdministrator, result.Account.Role)
	assert.NotEmpty(t, result.Token)
}

func TestRegister_EnrolleeWithoutEnrollmentSection(t *testing.T) {
	f := newRegistrationFixture()
	input := &registration.Input{
		Name:       "Early Bird",
		Email:      "early@x.com",
		Password:   "secret123",
		Role:       shared.RoleEnrollee,
		Enrollment: &registration.EnrollmentDetails{},
	}

	result, err := f.service().Register(context.Background(), input)
	require.NoError(t, err)
	assert.Nil(t, result.EnrollmentID)
	assert.Equal(t, 1, f.accounts.count())
	assert.Empty(t, f.ledger.all())
}

func TestRegister_ValidationFailed(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(in *registration.Input)
		field  string
	}{
		{"BadEmail", func(in *registration.Input) { in.Email = "not-an-email" }, "email"},
		{"ShortPassword", func(in *registration.Input) { in.Password = "abc" }, "password"},
		{"UnknownRole", func(in *registration.Input) { in.Role = "guest" }, "role"},
		{"MissingName", func(in *registration.Input) { in.Name = "   " }, "name"},
		{"PartialEnrollment", func(in *registration.Input) { in.Enrollment.School = "" }, "enrollment.school"},
		{"ZeroAge", func(in *registration.Input) { in.Enrollment.Age = 0 }, "enrollment.age"},
		{"NegativeAmount", func(in *registration.Input) { in.Proof.Amount = -1 }, "payment.amount"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRegistrationFixture()
			input := enrolleeInput("a@x.com", "order_1", "pay_1", 500)
			tc.mutate(input)

			_, err := f.service().Register(context.Background(), input)
			var validationErr registration.ErrValidationFailed
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tc.field)
			f.assertNothingPersisted(t)
		})
	}

	t.Run("NilInput", func(t *testing.T) {
		f := newRegistrationFixture()
		_, err := f.service().Register(context.Background(), nil)
		assert.ErrorIs(t, err, registration.ErrValidationFailed{})
	})
}

func TestRegister_ExistingEnrollmentForEmail(t *testing.T) {
	f := newRegistrationFixture()
	now := time.Now()
	require.NoError(t, f.enrollments.Create(context.Background(), &enrollment.Enrollment{
		ID: uuid.New(), Name: "Old", Email: "a@x.com", Phone: "1", School: "S", Class: "9",
		City: "C", State: "ST", Age: 14, Gender: "male", PaymentStatus: shared.PaymentStatusPending,
		CreatedAt: now, UpdatedAt: now,
	}))

	_, err := f.service().Register(context.Background(), enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	assert.ErrorIs(t, err, registration.ErrDuplicateAccount{})
	assert.Zero(t, f.accounts.count())
	assert.Empty(t, f.ledger.all())
}

func TestRegister_AccountCreatedConcurrently(t *testing.T) {
	f := newRegistrationFixture()
	f.accounts.createErr = account.ErrDuplicateEmail{Email: "a@x.com"}

	_, err := f.service().Register(context.Background(), enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	assert.ErrorIs(t, err, registration.ErrDuplicateAccount{})
	assert.Zero(t, f.accounts.deletes, "nothing was created, nothing to compensate")
}

func TestRegister_RollbackFailed(t *testing.T) {
	f := newRegistrationFixture()
	cleanupErr := errors.New("connection reset")
	f.accounts.deleteErr = cleanupErr
	f.verifier = verifierFunc(func(string, string, string) bool { return false })

	_, err := f.service().Register(context.Background(), enrolleeInput("a@x.com", "order_1", "pay_1", 500))

	var rollbackErr registration.ErrRollbackFailed
	require.ErrorAs(t, err, &rollbackErr)
	assert.NotEqual(t, uuid.Nil, rollbackErr.AccountID)
	assert.ErrorIs(t, err, registration.ErrPaymentVerificationFailed{})
	assert.ErrorIs(t, err, cleanupErr)
	assert.Equal(t, 1, f.accounts.count(), "account left behind for manual cleanup")
}

func TestRegister_CompensationSurvivesCanceledRequest(t *testing.T) {
	f := newRegistrationFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.verifier = verifierFunc(func(string, string, string) bool {
		cancel()
		return false
	})

	_, err := f.service().Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	assert.ErrorIs(t, err, registration.ErrPaymentVerificationFailed{})
	assert.NotErrorIs(t, err, registration.ErrRollbackFailed{})
	f.assertNothingPersisted(t)
}

func TestRegister_LedgerFailure(t *testing.T) {
	f := newRegistrationFixture()
	storeErr := errors.New("mongo unavailable")
	f.ledger.createErr = storeErr

	_, err := f.service().Register(context.Background(), enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	assert.ErrorIs(t, err, storeErr)
	f.assertNothingPersisted(t)
}

func TestRegister_EnrollmentFailureRollsBackAndRetrySucceeds(t *testing.T) {
	f := newRegistrationFixture()
	svc := f.service()
	ctx := context.Background()
	storeErr := errors.New("write concern timeout")
	f.enrollments.createErr = storeErr

	_, err := svc.Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	assert.ErrorIs(t, err, storeErr)
	f.assertNothingPersisted(t)

	f.enrollments.createErr = nil
	result, err := svc.Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)

	entries := f.ledger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, result.Account.ID, entries[0].AccountID)
	linked, err := f.accounts.GetByID(ctx, entries[0].AccountID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", linked.Email)
	assert.Len(t, f.enrollments.all(), 1)
}

func TestRegister_AmountMustMatchRegistrationFee(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.service().Register(context.Background(), enrolleeInput("a@x.com", "order_1", "pay_1", 1))
	var validationErr registration.ErrValidationFailed
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "payment.amount")
	f.assertNothingPersisted(t)
}

func TestRegister_SameProofRaceReportsAlreadyProcessed(t *testing.T) {
	f := newRegistrationFixture()
	ctx := context.Background()

	first, err := f.service().Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)

	// The second request checked the email before the first one committed.
	svc := NewRegistrationService(discardLogger(), RegistrationDependencies{
		Accounts:    &staleEmailAccounts{memAccounts: f.accounts},
		Enrollments: staleEmailEnrollments{memEnrollments: f.enrollments},
		Ledger:      f.ledger,
		Hasher:      security.NewPasswordHasher(bcrypt.MinCost),
		Tokens:      f.tokens,
		Verifier:    f.verifier,
		DefaultFee:  testDefaultFee,
	})

	_, err = svc.Register(ctx, enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	var processed registration.ErrAlreadyProcessed
	require.ErrorAs(t, err, &processed)
	assert.Equal(t, first.Account.ID, processed.AccountID)

	_, err = svc.Register(ctx, enrolleeInput("a@x.com", "order_2", "pay_2", 500))
	assert.ErrorIs(t, err, registration.ErrDuplicateAccount{})
	assert.Len(t, f.ledger.all(), 1)
	assert.Equal(t, 1, f.accounts.count())
}

func TestRegister_TokenFailureStillSucceeds(t *testing.T) {
	f := newRegistrationFixture()
	f.tokens = failingTokenIssuer{}

	result, err := f.service().Register(context.Background(), enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Token)
	assert.Equal(t, 1, f.accounts.count())
	assert.Len(t, f.enrollments.all(), 1)
	assert.Len(t, f.ledger.all(), 1)
	assert.Len(t, f.notifier.events, 1)
}

func TestRegister_NotifierErrorIsIgnored(t *testing.T) {
	f := newRegistrationFixture()
	f.notifier.err = errors.New("outbox down")

	result, err := f.service().Register(context.Background(), enrolleeInput("a@x.com", "order_1", "pay_1", 500))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Len(t, f.notifier.events, 1)
}
