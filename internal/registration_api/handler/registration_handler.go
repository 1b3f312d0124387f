package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/registration"
	"github.com/quiz-registration-service/internal/domain/shared"
	"github.com/quiz-registration-service/internal/registration_api/middleware"
	"github.com/quiz-registration-service/internal/registration_api/service"
)

// RegistrationHandler handles HTTP requests for registrations
type RegistrationHandler struct {
	registrationService service.RegistrationService
	logger              *slog.Logger
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(logger *slog.Logger, registrationService service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		logger:              logger,
	}
}

// Register creates an account and, for enrollees with a payment proof, the paid enrollment.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid registration body", "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.registrationService.Register(c.Request.Context(), mapRegisterRequest(&req))
	if err != nil {
		if !RespondRegistrationError(c, err) {
			h.logger.Error("Registration failed", "error", err, "correlation_id", middleware.GetCorrelationID(c))
		}
		return
	}

	RespondCreated(c, mapRegistrationResult(result))
}

func mapRegisterRequest(req *RegisterRequest) *registration.Input {
	input := &registration.Input{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     shared.Role(req.Role),
	}
	if e := req.Enrollment; e != nil {
		input.Enrollment = &registration.EnrollmentDetails{
			Phone:  e.Phone,
			School: e.School,
			Class:  e.Class,
			City:   e.City,
			State:  e.State,
			Age:    e.Age,
			Gender: e.Gender,
		}
	}
	if p := req.Payment; p != nil {
		input.Proof = &registration.PaymentProof{
			PaymentID: p.PaymentID,
			OrderID:   p.OrderID,
			Signature: p.Signature,
			Amount:    p.Amount,
		}
	}
	return input
}

func mapRegistrationResult(result *registration.Result) RegisterResponse {
	response := RegisterResponse{
		Account:       mapPublicViewToResponse(result.Account),
		Token:         result.Token,
		TransactionID: result.TransactionID,
	}
	if result.EnrollmentID != nil {
		response.EnrollmentID = result.EnrollmentID.String()
	}
	return response
}

// mapPublicViewToResponse maps the redacted account view to an account response DTO
func mapPublicViewToResponse(view account.PublicView) AccountResponse {
	return AccountResponse{
		ID:        view.ID.String(),
		Name:      view.Name,
		Email:     view.Email,
		Role:      string(view.Role),
		Phone:     view.Phone,
		AvatarURL: view.AvatarURL,
		CreatedAt: view.CreatedAt.Format(time.RFC3339),
	}
}
