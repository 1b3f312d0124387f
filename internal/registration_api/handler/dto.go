package handler

// RegisterRequest represents a registration request. Field rules are enforced by the
// registration service.
type RegisterRequest struct {
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	Password   string               `json:"password"`
	Role       string               `json:"role"`
	Enrollment *EnrollmentRequest   `json:"enrollment,omitempty"`
	Payment    *PaymentProofRequest `json:"payment,omitempty"`
}

// EnrollmentRequest carries the academic details of an enrollee
type EnrollmentRequest struct {
	Phone  string `json:"phone"`
	School string `json:"school"`
	Class  string `json:"class"`
	City   string `json:"city"`
	State  string `json:"state"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// PaymentProofRequest is the proof returned by the gateway checkout
type PaymentProofRequest struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
	Amount    int64  `json:"amount"` // Minor units, optional
}

// RegisterResponse represents a completed registration
type RegisterResponse struct {
	Account       AccountResponse `json:"account"`
	Token         string          `json:"token,omitempty"`
	EnrollmentID  string          `json:"enrollment_id,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CreatePaymentOrderRequest represents a request to open a gateway order
type CreatePaymentOrderRequest struct {
	Amount float64 `json:"amount" binding:"gte=0"` // Major units; zero means the registration fee
}

// PaymentOrderResponse is what the client needs to open the checkout
type PaymentOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}
