package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/enrollment"
	"github.com/quiz-registration-service/internal/domain/ledger"
	"github.com/quiz-registration-service/internal/domain/registration"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/quiz-registration-service/internal/platform/correlation"
)

const ledgerSourceRegistration = "registration"

// RegistrationDependencies are the collaborators of the registration workflow.
type RegistrationDependencies struct {
	Accounts    account.Repository
	Enrollments enrollment.Repository
	Ledger      ledger.Repository
	Hasher      PasswordHasher
	Tokens      TokenIssuer
	Verifier    SignatureVerifier
	Notifier    Notifier // optional
	DefaultFee  int64    // minor units, used when a proof carries no amount
}

// RegistrationServiceImpl implements the RegistrationService interface
type RegistrationServiceImpl struct {
	logger      *slog.Logger
	accounts    account.Repository
	enrollments enrollment.Repository
	ledger      ledger.Repository
	hasher      PasswordHasher
	tokens      TokenIssuer
	verifier    SignatureVerifier
	notifier    Notifier
	validate    *validator.Validate
	defaultFee  int64
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(logger *slog.Logger, deps RegistrationDependencies) RegistrationService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}

	return &RegistrationServiceImpl{
		logger:      logger,
		accounts:    deps.Accounts,
		enrollments: deps.Enrollments,
		ledger:      deps.Ledger,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		verifier:    deps.Verifier,
		notifier:    notifier,
		validate:    newInputValidator(),
		defaultFee:  deps.DefaultFee,
	}
}

// Register runs the registration as a saga. The account and the enrollment are undone
// if a later step fails. The ledger entry is written last and is never removed.
func (s *RegistrationServiceImpl) Register(ctx context.Context, input *registration.Input) (*registration.Result, error) {
	if input == nil {
		return nil, registration.ErrValidationFailed{Fields: map[string]string{"body": "is required"}}
	}
	input.Normalize()

	log := s.logger.With("email", input.Email, "role", string(input.Role))
	if id := correlation.FromContext(ctx); id != "" {
		log = log.With("correlation_id", id)
	}

	if err := s.validateInput(input); err != nil {
		log.Info("Registration rejected by validation", "error", err)
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, log, input); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc, err := account.NewAccount(input.Name, input.Email, passwordHash, input.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to build account: %w", err)
	}
	if input.Enrollment != nil {
		acc.Phone = input.Enrollment.Phone
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrDuplicateEmail{}) {
			log.Warn("Account for email created concurrently")
			return nil, s.concurrentDuplicate(ctx, log, input)
		}
		log.Error("Failed to create account", "error", err)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	log = log.With("account_id", acc.ID.String())

	tx := newSaga(log)
	tx.push("delete account", func(ctx context.Context) error {
		return s.accounts.Delete(ctx, acc.ID)
	})

	result := &registration.Result{Account: acc.Public()}

	if input.Role == shared.RoleEnrollee && input.Enrollment != nil {
		enrollmentID, transactionID, err := s.recordPaidEnrollment(ctx, log, tx, acc, input)
		if err != nil {
			return nil, s.rollback(ctx, log, tx, acc.ID, err)
		}
		result.EnrollmentID = &enrollmentID
		result.TransactionID = transactionID
	}

	// Records are committed at this point, so a token failure only means the user has
	// to log in separately.
	if token, err := s.tokens.Issue(acc.ID, string(acc.Role)); err != nil {
		log.Error("Failed to issue session token after registration", "error", err)
	} else {
		result.Token = token
	}

	s.notify(ctx, log, acc, result)

	log.Info("Registration completed",
		"enrollment_id", result.EnrollmentID,
		"transaction_id", result.TransactionID,
	)
	return result, nil
}

// ensureEmailAvailable rejects emails already used by an account or an enrollment.
// A retry of a registration that already went through is reported as AlreadyProcessed.
func (s *RegistrationServiceImpl) ensureEmailAvailable(ctx context.Context, log *slog.Logger, input *registration.Input) error {
	existing, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		log.Error("Failed to look up account by email", "error", err)
		return fmt.Errorf("failed to look up account by email: %w", err)
	}

	if existing != nil {
		if err := s.paymentRecordedFor(ctx, log, existing.ID, input.Proof); err != nil {
			return err
		}
		log.Info("Registration rejected, account exists")
		return registration.ErrDuplicateAccount{Email: input.Email}
	}

	enr, err := s.enrollments.GetByEmail(ctx, input.Email)
	if err != nil {
		log.Error("Failed to look up enrollment by email", "error", err)
		return fmt.Errorf("failed to look up enrollment by email: %w", err)
	}
	if enr != nil {
		log.Info("Registration rejected, enrollment exists", "enrollment_id", enr.ID.String())
		return registration.ErrDuplicateAccount{Email: input.Email}
	}
	return nil
}

// paymentRecordedFor returns ErrAlreadyProcessed when the proof's payment is already in
// the ledger against accountID, and nil when it is not.
func (s *RegistrationServiceImpl) paymentRecordedFor(ctx context.Context, log *slog.Logger, accountID uuid.UUID, proof *registration.PaymentProof) error {
	if proof == nil || proof.PaymentID == "" {
		return nil
	}

	entry, err := s.ledger.GetByTransactionID(ctx, proof.PaymentID)
	switch {
	case err == nil && entry.AccountID == accountID:
		log.Info("Registration retried for a processed payment",
			"transaction_id", entry.TransactionID,
			"account_id", accountID.String(),
		)
		return registration.ErrAlreadyProcessed{TransactionID: entry.TransactionID, AccountID: accountID}
	case err != nil && !errors.Is(err, ledger.ErrEntryNotFound{}):
		log.Error("Failed to look up ledger entry", "transaction_id", proof.PaymentID, "error", err)
		return fmt.Errorf("failed to look up ledger entry: %w", err)
	}
	return nil
}

// concurrentDuplicate classifies losing an account-creation race on the email. A request
// racing with its own resubmission is reported as AlreadyProcessed once the winner has
// recorded the payment.
func (s *RegistrationServiceImpl) concurrentDuplicate(ctx context.Context, log *slog.Logger, input *registration.Input) error {
	winner, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		log.Error("Failed to look up account by email", "error", err)
		return fmt.Errorf("failed to look up account by email: %w", err)
	}
	if winner != nil {
		if err := s.paymentRecordedFor(ctx, log, winner.ID, input.Proof); err != nil {
			return err
		}
	}
	return registration.ErrDuplicateAccount{Email: input.Email}
}

// recordPaidEnrollment verifies the proof, then writes the enrollment and the ledger
// entry. The enrollment id is allocated up front so both records link to each other.
// The ledger write goes last: its unique transaction id decides which registration owns
// a payment, and nothing after it is compensated.
func (s *RegistrationServiceImpl) recordPaidEnrollment(ctx context.Context, log *slog.Logger, tx *saga, acc *account.Account, input *registration.Input) (uuid.UUID, string, error) {
	proof := input.Proof
	if missing := proof.MissingFields(); len(missing) > 0 {
		log.Warn("Enrollee registration without payment proof", "missing", missing)
		return uuid.Nil, "", registration.ErrPaymentDetailsMissing{Missing: missing}
	}

	log = log.With("order_id", proof.OrderID, "transaction_id", proof.PaymentID)

	if !s.verifier.Verify(proof.OrderID, proof.PaymentID, proof.Signature) {
		log.Warn("Payment signature did not verify")
		return uuid.Nil, "", registration.ErrPaymentVerificationFailed{OrderID: proof.OrderID, PaymentID: proof.PaymentID}
	}

	amount := proof.Amount
	if amount == 0 {
		amount = s.defaultFee
	}
	if amount != s.defaultFee {
		log.Warn("Payment amount does not match the registration fee", "amount", amount, "fee", s.defaultFee)
		return uuid.Nil, "", registration.ErrValidationFailed{Fields: map[string]string{
			"payment.amount": fmt.Sprintf("must equal the registration fee of %d", s.defaultFee),
		}}
	}

	enrollmentID := uuid.New()
	entry, err := ledger.NewIncome(proof.PaymentID, proof.OrderID, amount, acc.ID, &enrollmentID, ledgerSourceRegistration)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to build ledger entry: %w", err)
	}

	now := time.Now().UTC()
	details := input.Enrollment
	enr := &enrollment.Enrollment{
		ID:            enrollmentID,
		AccountID:     &acc.ID,
		Name:          acc.Name,
		Email:         acc.Email,
		Phone:         details.Phone,
		School:        details.School,
		Class:         details.Class,
		City:          details.City,
		State:         details.State,
		Age:           details.Age,
		Gender:        details.Gender,
		PaymentStatus: shared.PaymentStatusPaid,
		PaymentDate:   &now,
		PaymentID:     proof.PaymentID,
		OrderID:       proof.OrderID,
		Signature:     proof.Signature,
		Amount:        amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.enrollments.Create(ctx, enr); err != nil {
		if errors.Is(err, enrollment.ErrDuplicateEnrollment{}) {
			log.Warn("Enrollment for email created concurrently")
			return uuid.Nil, "", registration.ErrDuplicateAccount{Email: acc.Email}
		}
		log.Error("Failed to create enrollment", "enrollment_id", enrollmentID.String(), "error", err)
		return uuid.Nil, "", fmt.Errorf("failed to create enrollment: %w", err)
	}
	tx.push("delete enrollment", func(ctx context.Context) error {
		return s.enrollments.Delete(ctx, enrollmentID)
	})

	if err := s.ledger.Create(ctx, entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicateEntry{}) {
			return uuid.Nil, "", s.alreadyProcessed(ctx, log, proof.PaymentID)
		}
		log.Error("Failed to record ledger entry", "error", err)
		return uuid.Nil, "", fmt.Errorf("failed to record ledger entry: %w", err)
	}

	return enrollmentID, proof.PaymentID, nil
}

func (s *RegistrationServiceImpl) alreadyProcessed(ctx context.Context, log *slog.Logger, paymentID string) error {
	existing, err := s.ledger.GetByTransactionID(ctx, paymentID)
	if err != nil {
		log.Error("Failed to load ledger entry for duplicate payment", "error", err)
		return fmt.Errorf("failed to load ledger entry %s: %w", paymentID, err)
	}

	log.Warn("Payment already recorded for another registration",
		"linked_account_id", existing.AccountID.String(),
	)
	return registration.ErrAlreadyProcessed{TransactionID: paymentID, AccountID: existing.AccountID}
}

// rollback compensates the saga. cause is returned unchanged when every undo step
// succeeds.
func (s *RegistrationServiceImpl) rollback(ctx context.Context, log *slog.Logger, tx *saga, accountID uuid.UUID, cause error) error {
	if cleanupErr := tx.compensate(ctx); cleanupErr != nil {
		log.Error("Registration rollback failed, manual cleanup required",
			"alert", true,
			"cause", cause,
			"error", cleanupErr,
		)
		return registration.ErrRollbackFailed{AccountID: accountID, Cause: cause, CleanupErr: cleanupErr}
	}

	log.Info("Registration rolled back", "reason", cause)
	return cause
}

func (s *RegistrationServiceImpl) notify(ctx context.Context, log *slog.Logger, acc *account.Account, result *registration.Result) {
	event := &shared.RegistrationEvent{
		EventType:     shared.EventTypeRegistrationCompleted,
		AccountID:     acc.ID,
		Name:          acc.Name,
		Email:         acc.Email,
		Role:          acc.Role,
		EnrollmentID:  result.EnrollmentID,
		TransactionID: result.TransactionID,
		CorrelationID: correlation.FromContext(ctx),
		OccurredAt:    time.Now().UTC(),
	}

	if err := s.notifier.RegistrationCompleted(ctx, event); err != nil {
		log.Error("Failed to notify registration completion", "error", err)
	}
}

func (s *RegistrationServiceImpl) validateInput(input *registration.Input) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate registration input: %w", err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldPath(fe)] = describeFieldError(fe)
	}
	return registration.ErrValidationFailed{Fields: fields}
}

// newInputValidator reports fields by their JSON names.
func newInputValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldPath drops the root struct name, e.g. "Input.enrollment.age" becomes "enrollment.age".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must not be negative"
	case "lt":
		return "must be less than " + fe.Param()
	default:
		return "is invalid"
	}
}
