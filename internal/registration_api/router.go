package registration_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quiz-registration-service/internal/registration_api/handler"
	"github.com/quiz-registration-service/internal/registration_api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	tokens middleware.TokenVerifier,
	registrationHandler *handler.RegistrationHandler,
	paymentHandler *handler.PaymentHandler,
	accountHandler *handler.AccountHandler,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/payments/orders", paymentHandler.CreateOrder)
		v1.POST("/registrations", registrationHandler.Register)

		accounts := v1.Group("/accounts", middleware.Auth(logger, tokens))
		{
			accounts.GET("/me", accountHandler.Me)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
