package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/eventra/eventra/pkg/errors"
	"github.com/eventra/eventra/pkg/response"
)

// Context keys shared with handlers.
const (
	// CtxUserIDKey holds the authenticated caller id on the Gin context.
	CtxUserIDKey = "userID"

	// IdentityHeader carries the caller id set by the fronting gateway,
	// which owns authentication.
	IdentityHeader = "X-User-ID"
)

// Identity extracts the caller id from the gateway header and stores it on
// the context. Requests without an identity are rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(IdentityHeader))
		if userID == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}
