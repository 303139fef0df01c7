package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"

	ctxUserID    = "userID"
	ctxRoleID    = "roleID"
	ctxRoleName  = "userRole"
	ctxEmail     = "userEmail"
	ctxLogger    = "logger"
	ctxRequestID = "requestID"
)

// UserID returns the authenticated user's id, or 0 outside Authenticate.
func UserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// RoleID returns the authenticated user's role id, or 0 when the user has none.
func RoleID(c *gin.Context) uint {
	return c.GetUint(ctxRoleID)
}

func RoleName(c *gin.Context) string {
	return c.GetString(ctxRoleName)
}

func RequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// Logger returns the request-scoped logger, falling back to a no-op logger.
func Logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
