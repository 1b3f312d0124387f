package enrollment

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/shared"
)

var (
	ErrMissingField         = errors.New("enrollment field cannot be empty")
	ErrInvalidAge           = errors.New("age must be greater than 0")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrIncompletePayment    = errors.New("paid enrollment requires payment id, order id, signature and payment date")
)

// Enrollment is a student's competition entry. Only Paid enrollments carrying the full
// payment proof are written by the registration flow.
type Enrollment struct {
	ID            uuid.UUID            `json:"id" bson:"_id"`
	AccountID     *uuid.UUID           `json:"account_id,omitempty" bson:"account_id,omitempty"`
	Name          string               `json:"name" bson:"name"`
	Email         string               `json:"email" bson:"email"`
	Phone         string               `json:"phone" bson:"phone"`
	School        string               `json:"school" bson:"school"`
	Class         string               `json:"class" bson:"class"`
	City          string               `json:"city" bson:"city"`
	State         string               `json:"state" bson:"state"`
	Age           int                  `json:"age" bson:"age"`
	Gender        string               `json:"gender" bson:"gender"`
	PaymentStatus shared.PaymentStatus `json:"payment_status" bson:"payment_status"`
	PaymentDate   *time.Time           `json:"payment_date,omitempty" bson:"payment_date,omitempty"`
	PaymentID     string               `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	OrderID       string               `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Signature     string               `json:"signature,omitempty" bson:"signature,omitempty"`
	Amount        int64                `json:"amount" bson:"amount"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

// Validate checks the invariants a store enforces before writing.
func (e *Enrollment) Validate() error {
	for _, v := range []string{e.Name, e.Email, e.Phone, e.School, e.Class, e.City, e.State, e.Gender} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingField
		}
	}
	if e.Age <= 0 {
		return ErrInvalidAge
	}

	switch e.PaymentStatus {
	case shared.PaymentStatusPaid:
		if e.PaymentID == "" || e.OrderID == "" || e.Signature == "" || e.PaymentDate == nil {
			return ErrIncompletePayment
		}
	case shared.PaymentStatusPending:
	default:
		return ErrInvalidPaymentStatus
	}
	return nil
}
