// Package handlers provides HTTP request handlers for the service.
package handlers

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/contentslots/internal/platform/logging"
	"github.com/jsamuelsen/contentslots/internal/ports"
)

// BuildInfo describes the running binary. Version, Commit and BuildTime are
// injected with ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`

	// DatabaseDriver names the configured storage dialect.
	DatabaseDriver string `json:"databaseDriver,omitempty"`
}

// NewBuildInfo creates a BuildInfo with the Go version filled in.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// PoolStats is a snapshot of the database connection pool.
type PoolStats struct {
	Dialect           string        `json:"dialect"`
	Breaker           string        `json:"breaker"`
	MaxOpen           int           `json:"maxOpen"`
	Open              int           `json:"open"`
	InUse             int           `json:"inUse"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"waitCount"`
	WaitDuration      time.Duration `json:"waitDuration"`
	MaxIdleClosed     int64         `json:"maxIdleClosed"`
	MaxLifetimeClosed int64         `json:"maxLifetimeClosed"`
}

// HealthHandler serves the operational /-/ endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	metrics   http.Handler
	poolStats func() PoolStats
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
		metrics:   MetricsHandler(),
	}
}

// WithGatherer serves /-/metrics from gatherer instead of the default registry.
func (h *HealthHandler) WithGatherer(gatherer prometheus.Gatherer) *HealthHandler {
	h.metrics = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return h
}

// WithPoolStats enables /-/db, reporting the snapshot returned by stats.
func (h *HealthHandler) WithPoolStats(stats func() PoolStats) *HealthHandler {
	h.poolStats = stats
	return h
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles /-/live. It never consults dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness handles /-/ready. Healthy and degraded instances answer 200;
// an unhealthy one answers 503 so it leaves rotation while the database is
// unreachable or the acquisition breaker is open.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK

	if result.Status != ports.HealthStatusHealthy {
		logger := logging.FromContext(c.Request.Context())

		for name, check := range result.Checks {
			if check.Status == ports.HealthStatusHealthy {
				continue
			}

			logger.Warn("readiness check failed",
				slog.String("check", name),
				slog.String("status", string(check.Status)),
				slog.String("code", check.Code),
				slog.String("message", check.Message),
			)
		}
	}

	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// BuildInfoHandler handles /-/build.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// PoolStatsHandler handles /-/db.
func (h *HealthHandler) PoolStatsHandler(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.poolStats())
}

// MetricsHandler returns the default Prometheus handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterHealthRoutes registers the operational routes on rg:
//   - GET /live
//   - GET /ready
//   - GET /build
//   - GET /metrics
//   - GET /db, only when pool stats are configured
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(h.metrics))

	if h.poolStats != nil {
		rg.GET("/db", h.PoolStatsHandler)
	}
}

// RegisterHealthRoutesOnEngine registers the routes under /-.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
