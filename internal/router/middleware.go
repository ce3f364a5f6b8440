package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/handlers"
	"github.com/Sly695/GymEasIA/internal/models"
)

// TokenVerifier resolves bearer tokens to known users.
type TokenVerifier interface {
	VerifyToken(token string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// authRequired rejects requests without a valid bearer token for a known user.
func authRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.Response{
				Success: false,
				Error:   "No token provided",
			})
			return
		}

		userID, err := verifier.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.Response{
				Success: false,
				Error:   "Invalid token",
			})
			return
		}

		if _, err := verifier.GetUser(c.Request.Context(), userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.Response{
				Success: false,
				Error:   "User not found",
			})
			return
		}

		handlers.SetUserID(c, userID)
		c.Next()
	}
}

// ginLogger is a custom request logging middleware.
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("client_ip", clientIP),
		)
	}
}
