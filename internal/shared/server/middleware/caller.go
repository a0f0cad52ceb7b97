package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/shared/server/respond"
)

const callerIDKey = "callerId"

// Caller requires an X-Caller-Id header and stores the identity in context.
// Real authentication is handled upstream; the engine only needs a stable
// owner identifier to scope documents and uploads.
func Caller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		callerID := strings.TrimSpace(c.GetHeader("X-Caller-Id"))
		if callerID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(callerIDKey, callerID)
		c.Next()
	}
}

// CallerIDFromContext fetches the caller ID set by the Caller middleware.
func CallerIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(callerIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
