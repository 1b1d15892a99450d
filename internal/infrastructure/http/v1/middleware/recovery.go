// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"beercatalog/internal/core/apperror"
	"beercatalog/pkg/logger"
)

// Recovery middleware turns a panic into a generic 500 response.
// It runs outside ErrorHandler, so it renders the body itself.
// The stack trace is logged, never returned to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", err)))
				c.AbortWithStatusJSON(http.StatusInternalServerError, internalErrorBody(c))
			}
		}()
		c.Next()
	}
}
