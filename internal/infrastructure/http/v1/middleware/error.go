package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/infrastructure/http/v1/dto"
	"beercatalog/pkg/logger"
)

// ErrorHandler renders the last error registered on the context as JSON.
// AppErrors keep their status and code; anything else becomes an opaque 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			c.JSON(apperror.GetHTTPStatus(err), dto.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)

		c.JSON(http.StatusInternalServerError, internalErrorBody(c))
	}
}

func internalErrorBody(c *gin.Context) dto.ErrorResponse {
	return dto.ErrorResponse{
		Code:    apperror.CodeInternal,
		Message: "Internal server error",
		Details: map[string]any{
			"request_id": c.GetString(ctxKeyRequestID),
		},
	}
}
