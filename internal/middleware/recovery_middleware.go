// internal/middleware/recovery_middleware.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	xerrors "bakery-popup/internal/pkg/errors"
	"bakery-popup/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a 500 and logs the stack.
// http.ErrAbortHandler is re-raised so net/http drops the connection.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			operatorID, _ := GetOperatorID(c)
			logger.Error("panic recovered",
				zap.String("panic", fmt.Sprint(rec)),
				zap.String("route", c.FullPath()),
				zap.String("operator_id", operatorID),
				zap.Stack("stack"),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.FromError(c, "internal server error", xerrors.ErrInternal)
		}()
		c.Next()
	}
}
