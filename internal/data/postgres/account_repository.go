// Package postgres provides PostgreSQL implementations of the account and outbox
// repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/quiz-registration-service/internal/platform/persistence"
)

const (
	insertAccountQuery = `INSERT INTO accounts (id, name, email, password_hash, role, phone, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	selectAccountColumns = `SELECT id, name, email, password_hash, role, phone, avatar_url, created_at, updated_at FROM accounts`

	selectAccountByIDQuery    = selectAccountColumns + ` WHERE id = $1`
	selectAccountByEmailQuery = selectAccountColumns + ` WHERE email = $1`

	deleteAccountQuery = `DELETE FROM accounts WHERE id = $1`
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create inserts acc. The unique email constraint maps to account.ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	_, err := r.querier.Exec(ctx, insertAccountQuery,
		acc.ID,
		acc.Name,
		acc.Email,
		acc.PasswordHash,
		string(acc.Role),
		acc.Phone,
		acc.AvatarURL,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return account.ErrDuplicateEmail{Email: acc.Email}
		}
		r.logger.Error("Failed to create account", "account_id", acc.ID.String(), "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := r.scanAccount(r.querier.QueryRow(ctx, selectAccountByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "account_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// GetByEmail retrieves an account by email, returning nil, nil when none exists.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	acc, err := r.scanAccount(r.querier.QueryRow(ctx, selectAccountByEmailQuery, account.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by email", "error", err)
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return acc, nil
}

// Delete removes an account. Used to compensate a registration that did not complete.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, deleteAccountQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete account", "account_id", id.String(), "error", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}
	return nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acc  account.Account
		role string
	)
	err := row.Scan(
		&acc.ID,
		&acc.Name,
		&acc.Email,
		&acc.PasswordHash,
		&role,
		&acc.Phone,
		&acc.AvatarURL,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.Role = shared.Role(role)
	return &acc, nil
}
