package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/contentslots/internal/platform/logging"
)

// WithLogger seeds the request context with logger so that later
// middleware, the service and the store all log through it. A nil logger
// leaves the context untouched.
func WithLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger == nil {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

// Logging returns middleware that logs each request on completion with its
// status and latency. Paths under /-/ and any skipPaths are not logged.
//
// When the request carries a span, trace_id is added to the context logger
// before the handler runs, so storage failures can be matched to traces.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok || strings.HasPrefix(path, "/-/") {
			c.Next()
			return
		}

		start := time.Now()
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			ctx = logging.WithContext(ctx, logging.FromContextOr(ctx, logger).With(slog.String(logging.KeyTraceID, sc.TraceID().String())))
			c.Request = c.Request.WithContext(ctx)
		}

		ctxLogger := logging.FromContextOr(ctx, logger)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}

		if claims := GetClaims(c); claims != nil {
			attrs = append(attrs, slog.String(logging.KeySubject, claims.Subject))
		}

		ctxLogger.LogAttrs(ctx, level, "request completed", attrs...)
	}
}
