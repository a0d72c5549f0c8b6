package telemetry

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jsamuelsen/contentslots/internal/platform/telemetry"

// HeaderTraceID carries the trace of a request back to the caller.
const HeaderTraceID = "X-Trace-ID"

// Metrics holds HTTP server instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{requestDuration: requestDuration, activeRequests: activeRequests}, nil
}

// Middleware returns the tracing and metrics handlers, in order. The otelgin
// span becomes the parent of the store spans; internal /-/ routes are not
// traced. The trace id is echoed in X-Trace-ID.
func Middleware(serviceName string) []gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	tracing := otelgin.Middleware(serviceName,
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return !strings.HasPrefix(c.Request.URL.Path, "/-/")
		}),
	)

	return []gin.HandlerFunc{tracing, instrument(metrics)}
}

func instrument(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.request.method", c.Request.Method)

		metrics.activeRequests.Add(ctx, 1, metric.WithAttributes(method, route))
		defer metrics.activeRequests.Add(ctx, -1, metric.WithAttributes(method, route))

		c.Next()

		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			method,
			route,
			attribute.Int("http.response.status_code", c.Writer.Status()),
		))
	}
}
