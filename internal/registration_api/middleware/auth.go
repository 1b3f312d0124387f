package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quiz-registration-service/internal/platform/security"
)

const (
	// AccountIDKey holds the authenticated account id (uuid.UUID)
	AccountIDKey = "account_id"
	// RoleKey holds the authenticated account role
	RoleKey = "role"
)

// TokenVerifier checks session tokens.
type TokenVerifier interface {
	Verify(token string) (*security.Claims, error)
}

// Auth requires a valid "Authorization: Bearer <token>" header.
func Auth(logger *slog.Logger, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			message := "Invalid session token"
			if errors.Is(err, security.ErrTokenExpired) {
				message = "Session token has expired"
			}
			logger.Info("Rejected session token", "error", err, "correlation_id", GetCorrelationID(c))
			abortUnauthorized(c, message)
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// GetAccountID returns the authenticated account id set by Auth.
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(AccountIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

func abortUnauthorized(c *gin.Context, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
