package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contentslots/internal/adapters/http/handlers"
	"github.com/jsamuelsen/contentslots/internal/adapters/http/middleware"
	"github.com/jsamuelsen/contentslots/internal/platform/config"
	"github.com/jsamuelsen/contentslots/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig contains authentication header configuration.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// ContentSlotHandler serves the content slot and view endpoints.
	ContentSlotHandler *handlers.ContentSlotHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Context logger - seeds the request context with cfg.Logger
//  3. Request ID - generate/extract request ID
//  4. Correlation ID - group requests of one editor action
//  5. OpenTelemetry - tracing and metrics
//  6. Logging - request logging (skips /-/ endpoints)
//  7. Timeout - request deadline on /api/v1
//
// Route groups:
//   - /-/ (internal): Health and metrics, no auth
//   - /api/v1/ (public API): reads are open, writes require auth when enabled
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.WithLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	engine.Use(middleware.Logging(cfg.Logger))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers business API routes.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.ContentSlotHandler == nil {
		return
	}

	cfg.ContentSlotHandler.RegisterContentSlotRoutes(rg, writeGuards(cfg.AuthConfig)...)
}

// writeGuards returns the middleware protecting mutating routes.
func writeGuards(authCfg *config.AuthConfig) []gin.HandlerFunc {
	if authCfg == nil || !authCfg.Enabled {
		return nil
	}

	guards := []gin.HandlerFunc{middleware.RequireAuth(authCfg)}
	if authCfg.WriteScope != "" {
		guards = append(guards, middleware.RequireScopes(authCfg, authCfg.WriteScope))
	}

	return guards
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
	contentSlotHandler *handlers.ContentSlotHandler,
) RouterConfig {
	return RouterConfig{
		Logger:             logger,
		AuthConfig:         authCfg,
		AppConfig:          appCfg,
		HealthHandler:      healthHandler,
		ContentSlotHandler: contentSlotHandler,
		Timeout:            DefaultRequestTimeout,
	}
}
