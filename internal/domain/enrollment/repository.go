package enrollment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists enrollments. Email is unique across enrollments.
type Repository interface {
	Create(ctx context.Context, enrollment *Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	// GetByEmail returns nil, nil when no enrollment uses the email.
	GetByEmail(ctx context.Context, email string) (*Enrollment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrEnrollmentNotFound indicates missing enrollment
type ErrEnrollmentNotFound struct {
	EnrollmentID uuid.UUID
}

func (e ErrEnrollmentNotFound) Error() string {
	return "enrollment not found: " + e.EnrollmentID.String()
}

func (e ErrEnrollmentNotFound) Is(target error) bool {
	t, ok := target.(ErrEnrollmentNotFound)
	if !ok {
		return false
	}
	return t.EnrollmentID == uuid.Nil || t.EnrollmentID == e.EnrollmentID
}

// ErrDuplicateEnrollment indicates an enrollment already exists for the email
type ErrDuplicateEnrollment struct {
	Email string
}

func (e ErrDuplicateEnrollment) Error() string {
	return "enrollment with email already exists: " + e.Email
}

func (e ErrDuplicateEnrollment) Is(target error) bool {
	t, ok := target.(ErrDuplicateEnrollment)
	if !ok {
		return false
	}
	return t.Email == "" || t.Email == e.Email
}
