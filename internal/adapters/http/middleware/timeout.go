package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contentslots/internal/platform/logging"
)

// SimpleTimeout sets a deadline on the request context. It does not abort
// the handler: the deadline reaches the store, which gives up waiting for a
// connection or a query and returns a storage error.
func SimpleTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logging.FromContext(ctx).WarnContext(ctx, "request deadline exceeded",
				slog.String("path", c.Request.URL.Path),
				slog.Duration("timeout", timeout),
				slog.Int("status", c.Writer.Status()),
			)
		}
	}
}
