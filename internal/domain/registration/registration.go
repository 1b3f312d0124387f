// Package registration holds the request, result and failure types of the paid
// registration workflow.
package registration

import (
	"strings"

	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/shared"
)

// Input is a registration request as received from a client.
type Input struct {
	Name       string             `json:"name" validate:"required,max=120"`
	Email      string             `json:"email" validate:"required,email,max=254"`
	Password   string             `json:"password" validate:"required,min=6,max=72"`
	Role       shared.Role        `json:"role" validate:"required,oneof=administrator enrollee"`
	Enrollment *EnrollmentDetails `json:"enrollment,omitempty"`
	Proof      *PaymentProof      `json:"payment,omitempty"`
}

// EnrollmentDetails are the academic fields of an enrollee.
type EnrollmentDetails struct {
	Phone  string `json:"phone" validate:"required,max=20"`
	School string `json:"school" validate:"required,max=200"`
	Class  string `json:"class" validate:"required,max=20"`
	City   string `json:"city" validate:"required,max=100"`
	State  string `json:"state" validate:"required,max=100"`
	Age    int    `json:"age" validate:"gt=0,lt=150"`
	Gender string `json:"gender" validate:"required,max=20"`
}

// PaymentProof is what the gateway hands the client after checkout. Amount is in
// minor units; zero means the configured registration fee.
type PaymentProof struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
	Amount    int64  `json:"amount" validate:"gte=0"`
}

// Normalize trims free-text fields and canonicalizes the email.
func (in *Input) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = account.NormalizeEmail(in.Email)
	in.Role = shared.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))

	if d := in.Enrollment; d != nil {
		d.Phone = strings.TrimSpace(d.Phone)
		d.School = strings.TrimSpace(d.School)
		d.Class = strings.TrimSpace(d.Class)
		d.City = strings.TrimSpace(d.City)
		d.State = strings.TrimSpace(d.State)
		d.Gender = strings.TrimSpace(d.Gender)
		if d.IsEmpty() {
			in.Enrollment = nil
		}
	}
	if p := in.Proof; p != nil {
		p.PaymentID = strings.TrimSpace(p.PaymentID)
		p.OrderID = strings.TrimSpace(p.OrderID)
		p.Signature = strings.TrimSpace(p.Signature)
		if p.PaymentID == "" && p.OrderID == "" && p.Signature == "" && p.Amount == 0 {
			in.Proof = nil
		}
	}
}

// IsEmpty reports whether no enrollment field was supplied at all.
func (d *EnrollmentDetails) IsEmpty() bool {
	return d.Phone == "" && d.School == "" && d.Class == "" && d.City == "" &&
		d.State == "" && d.Gender == "" && d.Age == 0
}

// MissingFields lists the proof fields that are blank.
func (p *PaymentProof) MissingFields() []string {
	if p == nil {
		return []string{"payment_id", "order_id", "signature"}
	}
	var missing []string
	if p.PaymentID == "" {
		missing = append(missing, "payment_id")
	}
	if p.OrderID == "" {
		missing = append(missing, "order_id")
	}
	if p.Signature == "" {
		missing = append(missing, "signature")
	}
	return missing
}

// Result is returned once a registration commits.
type Result struct {
	Account       account.PublicView `json:"account"`
	Token         string             `json:"token,omitempty"`
	EnrollmentID  *uuid.UUID         `json:"enrollment_id,omitempty"`
	TransactionID string             `json:"transaction_id,omitempty"`
}
