package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/quiz-registration-service/internal/registration_api/middleware"
	"github.com/quiz-registration-service/internal/registration_api/service"
)

// PaymentHandler handles HTTP requests for payment orders
type PaymentHandler struct {
	paymentOrderService service.PaymentOrderService
	logger              *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentOrderService service.PaymentOrderService) *PaymentHandler {
	return &PaymentHandler{
		paymentOrderService: paymentOrderService,
		logger:              logger,
	}
}

// CreateOrder opens a gateway order. An empty body orders the registration fee.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreatePaymentOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.logger.Info("Invalid payment order body", "error", err, "correlation_id", middleware.GetCorrelationID(c))
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	order, err := h.paymentOrderService.CreateOrder(c.Request.Context(), req.Amount)
	if err != nil {
		if !RespondRegistrationError(c, err) {
			h.logger.Error("Failed to create payment order", "error", err, "correlation_id", middleware.GetCorrelationID(c))
		}
		return
	}

	RespondCreated(c, PaymentOrderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    order.KeyID,
	})
}
