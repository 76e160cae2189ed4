package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workshop-backend/pkg/errutil"
)

// Error renders the last error attached by a handler as the JSON envelope.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var be errutil.BaseError
		if errors.As(last.Err, &be) {
			status := be.Code.HTTPStatus()
			if status >= http.StatusInternalServerError {
				zap.L().Error("[HTTP] request failed",
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
					zap.Error(last.Err),
				)
			}
			c.JSON(status, be.JSON())
			return
		}

		zap.L().Error("[HTTP] unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(last.Err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
			"code":    errutil.StatusInternal,
		})
	}
}
