// Package main is the entry point for the content slot service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/contentslots/internal/adapters/http"
	"github.com/jsamuelsen/contentslots/internal/adapters/http/handlers"
	"github.com/jsamuelsen/contentslots/internal/adapters/storage/sqlstore"
	"github.com/jsamuelsen/contentslots/internal/app"
	"github.com/jsamuelsen/contentslots/internal/platform/config"
	"github.com/jsamuelsen/contentslots/internal/platform/logging"
	"github.com/jsamuelsen/contentslots/internal/platform/telemetry"
	"github.com/jsamuelsen/contentslots/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Create the HTTP server; it owns the shutdown order from here on
	server := http.New(&cfg.Server, cfg.App.Environment, logger)

	abort := func(err error) error {
		if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
			logger.Error("cleanup after startup failure", slog.Any("error", shutdownErr))
		}

		return err
	}

	// 5. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		Version:        cfg.App.Version,
		Environment:    cfg.App.Environment,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		DatabaseSystem: cfg.Database.Driver,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	server.OnShutdown("telemetry", telProvider.Shutdown)

	// 6. Open the database pool and the content slot store
	pool, store, err := openStore(ctx, &cfg.Database, logger)
	if err != nil {
		return abort(err)
	}

	server.OnShutdown("database pool", func(context.Context) error { return pool.Close() })

	healthRegistry := ports.NewHealthRegistry(ports.WithCheckTimeout(cfg.Database.AcquireTimeout))
	if err := healthRegistry.Register(pool); err != nil {
		return abort(fmt.Errorf("registering database health check: %w", err))
	}

	// 7. Create the application service
	slotService := app.NewContentSlotService(app.ContentSlotServiceConfig{
		Repository: store,
		Logger:     logger,
		// Leave half the pool to single-slot requests.
		ViewConcurrency: cfg.Database.MaxOpenConns / 2,
	})

	// 8. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	buildInfo.DatabaseDriver = cfg.Database.Driver

	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo).
		WithPoolStats(poolStats(pool, cfg.Database.Driver))
	slotHandler := handlers.NewContentSlotHandler(slotService)

	// 9. Setup router with all middleware and routes
	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, &cfg.Auth, healthHandler, slotHandler)
	http.SetupRouter(server.Engine(), routerCfg)

	// 10. Start server (non-blocking)
	serverErr := server.Start()

	// 11. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// openStore opens the pool for the configured driver, creates the store with
// its metrics on the default Prometheus registry and applies the schema when
// auto_migrate is set.
func openStore(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*sqlstore.SQLPool, *sqlstore.Store, error) {
	dialect, err := sqlstore.DialectFor(cfg.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("selecting database dialect: %w", err)
	}

	pool, err := sqlstore.OpenPool(ctx, sqlstore.PoolConfig{
		Dialect:         dialect,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		AcquireTimeout:  cfg.AcquireTimeout,
		Breaker: sqlstore.BreakerConfig{
			MaxFailures:   cfg.CircuitBreaker.MaxFailures,
			Timeout:       cfg.CircuitBreaker.Timeout,
			HalfOpenLimit: cfg.CircuitBreaker.HalfOpenLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	metrics, err := sqlstore.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		_ = pool.Close()
		return nil, nil, fmt.Errorf("registering store metrics: %w", err)
	}

	store, err := sqlstore.New(sqlstore.Config{
		Pool:        pool,
		Dialect:     dialect,
		TablePrefix: cfg.TablePrefix,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		_ = pool.Close()
		return nil, nil, fmt.Errorf("creating content slot store: %w", err)
	}

	if cfg.AutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = pool.Close()
			return nil, nil, fmt.Errorf("applying schema: %w", err)
		}

		logger.Info("database schema ensured", slog.String("driver", cfg.Driver))
	}

	return pool, store, nil
}

// poolStats adapts the pool snapshot for the /-/db endpoint.
func poolStats(pool *sqlstore.SQLPool, driver string) func() handlers.PoolStats {
	return func() handlers.PoolStats {
		st := pool.Stats()

		return handlers.PoolStats{
			Dialect:           driver,
			Breaker:           pool.BreakerState().String(),
			MaxOpen:           st.MaxOpenConnections,
			Open:              st.OpenConnections,
			InUse:             st.InUse,
			Idle:              st.Idle,
			WaitCount:         st.WaitCount,
			WaitDuration:      st.WaitDuration,
			MaxIdleClosed:     st.MaxIdleClosed,
			MaxLifetimeClosed: st.MaxLifetimeClosed,
		}
	}
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Bind failure or runtime error; still release the pool and exporters.
		if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
			logger.Error("cleanup after server error", slog.Any("error", shutdownErr))
		}

		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	// Graceful shutdown sequence
	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Drain in-flight requests, then flush telemetry and close the pool.
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
