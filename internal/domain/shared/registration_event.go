package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidEvent = errors.New("invalid registration event")

// RegistrationEvent is the message published once a registration commits. It carries
// enough to address the confirmation email without reading the stores again.
type RegistrationEvent struct {
	EventType     EventType  `json:"event_type"`
	AccountID     uuid.UUID  `json:"account_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	EnrollmentID  *uuid.UUID `json:"enrollment_id,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// Validate checks the fields consumers rely on.
func (e *RegistrationEvent) Validate() error {
	if e.EventType != EventTypeRegistrationCompleted {
		return ErrInvalidEvent
	}
	if e.AccountID == uuid.Nil || e.Email == "" {
		return ErrInvalidEvent
	}
	return nil
}
