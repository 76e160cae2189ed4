package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"workshop-backend/pkg/errutil"
)

const (
	OwnerHeader = "X-User-ID"
	ownerKey    = "owner_id"
)

// Owner resolves the caller id from X-User-ID, falling back to defaultID.
// Requests with neither are rejected with 401.
func Owner(defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if id == "" {
			id = strings.TrimSpace(defaultID)
		}
		if id == "" {
			err := errutil.Unauthorized("Caller id is required", nil)
			c.AbortWithStatusJSON(errutil.StatusUnauthorized.HTTPStatus(), err.(errutil.BaseError).JSON())
			return
		}

		c.Set(ownerKey, id)
		c.Next()
	}
}

// OwnerID returns the id stored by Owner, or "" when the middleware did not run.
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerKey)
}
