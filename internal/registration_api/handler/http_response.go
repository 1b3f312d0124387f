package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quiz-registration-service/internal/domain/registration"
	"github.com/quiz-registration-service/internal/registration_api/middleware"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewResponse creates a new response with data
func NewResponse(data interface{}) *Response {
	return &Response{
		Data: data,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string) *Response {
	return &Response{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	response := NewResponse(data)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respondWithErrorDetails(c, statusCode, code, message, nil)
}

func respondWithErrorDetails(c *gin.Context, statusCode int, code, message string, details map[string]string) {
	response := NewErrorResponse(code, message)
	response.Error.Details = details
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondUnauthorized sends a 401 Unauthorized response with an error
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondRegistrationError maps a registration failure to its status, code and a
// message telling the user what to do next. It reports whether err was a known type.
func RespondRegistrationError(c *gin.Context, err error) bool {
	var validationErr registration.ErrValidationFailed

	switch {
	case errors.As(err, &validationErr):
		respondWithErrorDetails(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"Some fields are missing or invalid.", validationErr.Fields)
	case errors.Is(err, registration.ErrRollbackFailed{}):
		RespondWithError(c, http.StatusInternalServerError, "ROLLBACK_FAILED",
			"Registration failed and needs manual review. Contact support before retrying.")
	case errors.Is(err, registration.ErrDuplicateAccount{}):
		RespondWithError(c, http.StatusConflict, "DUPLICATE_ACCOUNT",
			"An account with this email already exists. Log in instead.")
	case errors.Is(err, registration.ErrPaymentDetailsMissing{}):
		RespondWithError(c, http.StatusBadRequest, "PAYMENT_DETAILS_MISSING",
			"Payment details are missing. Complete the payment before registering.")
	case errors.Is(err, registration.ErrPaymentVerificationFailed{}):
		RespondWithError(c, http.StatusPaymentRequired, "PAYMENT_VERIFICATION_FAILED",
			"We could not verify this payment. Do not pay again; contact support with your payment ID.")
	case errors.Is(err, registration.ErrAlreadyProcessed{}):
		RespondWithError(c, http.StatusConflict, "ALREADY_PROCESSED",
			"This payment has already been used to complete a registration.")
	case errors.Is(err, registration.ErrGatewayUnavailable{}):
		RespondWithError(c, http.StatusServiceUnavailable, "GATEWAY_UNAVAILABLE",
			"The payment gateway is temporarily unavailable. Please try again shortly.")
	default:
		RespondInternalError(c)
		return false
	}
	return true
}
