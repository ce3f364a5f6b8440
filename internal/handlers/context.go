package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userIDKey is where the auth middleware stores the authenticated user id.
const userIDKey = "userID"

// SetUserID stores the authenticated user id on the request context.
func SetUserID(c *gin.Context, id uuid.UUID) {
	c.Set(userIDKey, id)
}

// UserIDFrom returns the authenticated user id. Routes using it are always
// behind the auth middleware, so a missing value is a programming error.
func UserIDFrom(c *gin.Context) uuid.UUID {
	return c.MustGet(userIDKey).(uuid.UUID)
}
