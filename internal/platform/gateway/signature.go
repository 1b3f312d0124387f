// Package gateway talks to the payment order gateway and checks the signatures it
// issues for completed payments.
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/razorpay/razorpay-go/utils"
)

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID" keyed by secret. This is
// the signature the gateway hands the client after a successful checkout.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload(orderID, paymentID)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is exactly the lowercase hex signature of
// orderID and paymentID under secret. Empty input never verifies.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || secret == "" {
		return false
	}
	return utils.VerifySignature([]byte(signedPayload(orderID, paymentID)), signature, secret)
}

func signedPayload(orderID, paymentID string) string {
	return orderID + "|" + paymentID
}

// Verifier binds the gateway secret so callers only pass the proof.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, v.secret)
}
