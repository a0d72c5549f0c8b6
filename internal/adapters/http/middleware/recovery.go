package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contentslots/internal/adapters/http/dto"
	"github.com/jsamuelsen/contentslots/internal/platform/logging"
)

// Recovery returns middleware that recovers from panics.
// On panic, it:
//   - Logs the error with full stack trace at ERROR level
//   - Returns a 500 Internal Server Error with standard error envelope
//   - Includes trace_id in the response for debugging
//
// This middleware should be applied first in the chain to catch panics
// from all subsequent handlers and middleware. A panic inside a store call
// still releases its connection; the store defers the release.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return RecoveryWithWriter(logger, nil)
}

// RecoveryWithWriter returns recovery middleware that also hands the panic
// value and stack to stackHandler.
func RecoveryWithWriter(logger *slog.Logger, stackHandler func(err any, stack []byte)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()
			if stackHandler != nil {
				stackHandler(r, stack)
			}

			ctxLogger := logging.FromContextOr(c.Request.Context(), logger)

			traceID := dto.GetTraceID(c)

			ctxLogger.Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(stack)),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String(logging.KeyTraceID, traceID),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID))
		}()

		c.Next()
	}
}
