package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/quiz-registration-service/internal/domain/registration"
)

var ErrInvalidOrderAmount = errors.New("order amount must be greater than 0")

// Order is a gateway order the client pays against.
type Order struct {
	ID               string `json:"order_id"`
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
	Receipt          string `json:"receipt"`
}

// orderCreator is the part of the SDK order resource the client uses.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// OrderClient creates orders through the gateway SDK. It never retries.
type OrderClient struct {
	orders   orderCreator
	keyID    string
	currency string
	logger   *slog.Logger
	now      func() time.Time
}

func NewOrderClient(logger *slog.Logger, baseURL, keyID, keySecret, currency string, timeout time.Duration) *OrderClient {
	client := razorpay.NewClient(keyID, keySecret)
	if baseURL != "" {
		client.Request.BaseURL = strings.TrimRight(baseURL, "/")
	}
	client.Request.HTTPClient = &http.Client{Timeout: timeout}

	return &OrderClient{
		orders:   client.Order,
		keyID:    keyID,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// KeyID is the public key the checkout widget needs.
func (c *OrderClient) KeyID() string {
	return c.keyID
}

// ToMinorUnits converts a major-unit amount to minor units, rounding to the nearest unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder registers an order for amount (major units). Every transport or
// protocol failure is reported as registration.ErrGatewayUnavailable.
func (c *OrderClient) CreateOrder(ctx context.Context, amount float64) (*Order, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidOrderAmount
	}
	minor := ToMinorUnits(amount)
	if minor <= 0 {
		return nil, ErrInvalidOrderAmount
	}

	receipt := "rcpt_" + strconv.FormatInt(c.now().UnixNano(), 10)
	data := map[string]interface{}{
		"amount":   minor,
		"currency": c.currency,
		"receipt":  receipt,
	}

	body, err := c.create(ctx, data)
	if err != nil {
		c.logger.Error("Payment gateway request failed", "receipt", receipt, "error", err)
		return nil, registration.ErrGatewayUnavailable{Err: err}
	}

	order := &Order{
		ID:               stringField(body, "id"),
		AmountMinorUnits: int64Field(body, "amount"),
		Currency:         stringField(body, "currency"),
		Receipt:          stringField(body, "receipt"),
	}
	if order.ID == "" {
		return nil, registration.ErrGatewayUnavailable{Err: errors.New("order response missing id")}
	}
	if order.AmountMinorUnits == 0 {
		order.AmountMinorUnits = minor
	}
	if order.Currency == "" {
		order.Currency = c.currency
	}
	if order.Receipt == "" {
		order.Receipt = receipt
	}

	c.logger.Info("Payment order created", "order_id", order.ID, "amount", order.AmountMinorUnits, "currency", order.Currency)
	return order, nil
}

// create runs the SDK call, which takes no context, so ctx cancellation returns early.
// The call itself is bounded by the HTTP client timeout.
func (c *OrderClient) create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("malformed gateway response: %v", r)}
			}
		}()
		body, err := c.orders.Create(data, nil)
		done <- result{body: body, err: err}
	}()

	select {
	case res := <-done:
		return res.body, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func stringField(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

func int64Field(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
