package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/shared"
)

var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrEmptyPasswordHash = errors.New("password hash cannot be empty")
	ErrInvalidRole       = errors.New("role must be administrator or enrollee")
)

// Account is a login identity. The password hash never leaves the service boundary;
// use PublicView for anything returned to callers.
type Account struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         shared.Role `json:"role"`
	Phone        string      `json:"phone,omitempty"`
	AvatarURL    string      `json:"avatar_url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// PublicView is the redacted projection of an Account.
type PublicView struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      shared.Role `json:"role"`
	Phone     string      `json:"phone,omitempty"`
	AvatarURL string      `json:"avatar_url,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NormalizeEmail trims and lower-cases an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccount creates an account with a fresh ID. passwordHash must already be hashed.
func NewAccount(name, email, passwordHash string, role shared.Role) (*Account, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" {
		return nil, ErrEmptyName
	}
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if passwordHash == "" {
		return nil, ErrEmptyPasswordHash
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()
	return &Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Public returns the redacted view of the account.
func (a *Account) Public() PublicView {
	return PublicView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Phone:     a.Phone,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt,
	}
}
