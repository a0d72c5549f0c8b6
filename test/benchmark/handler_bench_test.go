package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/contentslots/internal/adapters/http"
	"github.com/jsamuelsen/contentslots/internal/adapters/http/handlers"
	"github.com/jsamuelsen/contentslots/internal/adapters/storage/sqlstore"
	"github.com/jsamuelsen/contentslots/internal/app"
	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/platform/config"
	"github.com/jsamuelsen/contentslots/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

// createGinContext creates a Gin context for handler testing.
func createGinContext(w http.ResponseWriter, r *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = r
	return c
}

// setupHealthHandler creates a HealthHandler with a minimal registry for benchmarking.
func setupHealthHandler() *handlers.HealthHandler {
	registry := ports.NewHealthRegistry()
	buildInfo := handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")
	return handlers.NewHealthHandler(registry, buildInfo)
}

// setupRouter serves the full stack over a SQLite file seeded with one view.
func setupRouter(b *testing.B, slotsPerView, optionsPerSlot int) (*gin.Engine, *sqlstore.Store) {
	b.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dialect, err := sqlstore.DialectFor(sqlstore.DialectSQLite)
	if err != nil {
		b.Fatal(err)
	}

	dsn := "file:" + filepath.Join(b.TempDir(), "bench.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	pool, err := sqlstore.OpenPool(ctx, sqlstore.PoolConfig{Dialect: dialect, DSN: dsn, MaxOpenConns: 4, Logger: logger})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = pool.Close() })

	metrics, err := sqlstore.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		b.Fatal(err)
	}

	store, err := sqlstore.New(sqlstore.Config{Pool: pool, Dialect: dialect, Logger: logger, Metrics: metrics})
	if err != nil {
		b.Fatal(err)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		b.Fatal(err)
	}

	for col := 1; col <= slotsPerView; col++ {
		opts := make(domain.Options, optionsPerSlot)
		for i := range optionsPerSlot {
			opts[fmt.Sprintf("opt%d", i)] = fmt.Sprintf("value-%d", i)
		}

		if _, err := store.Create(ctx, domain.ContentSlot{
			ViewID: 1, ComponentType: "Banner",
			ColumnStart: col, ColumnEnd: col + 1, RowStart: 1, RowEnd: 2,
			Options: opts,
		}); err != nil {
			b.Fatal(err)
		}
	}

	service := app.NewContentSlotService(app.ContentSlotServiceConfig{Repository: store, Logger: logger})

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.NewDefaultRouterConfig(
		logger,
		&config.AppConfig{Name: "contentslots", Version: "bench", Environment: "test"},
		&config.AuthConfig{},
		setupHealthHandler(),
		handlers.NewContentSlotHandler(service),
	))

	return engine, store
}

// BenchmarkLivenessHandler measures the performance of the liveness endpoint.
func BenchmarkLivenessHandler(b *testing.B) {
	handler := setupHealthHandler()
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Liveness(c)
	}
}

// BenchmarkReadinessHandler_WithChecks measures readiness with registered health checks.
func BenchmarkReadinessHandler_WithChecks(b *testing.B) {
	registry := ports.NewHealthRegistry()
	_ = registry.Register(&simpleHealthChecker{name: "database"})

	handler := handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z"))
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Readiness(c)
	}
}

// BenchmarkGetContentSlot measures a single slot read with its options.
func BenchmarkGetContentSlot(b *testing.B) {
	engine, _ := setupRouter(b, 1, 8)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contentslots/1", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}

// BenchmarkListByView measures a view read, which batches option loading.
func BenchmarkListByView(b *testing.B) {
	for _, slots := range []int{1, 10, 50} {
		b.Run(fmt.Sprintf("slots=%d", slots), func(b *testing.B) {
			engine, _ := setupRouter(b, slots, 4)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/views/1/contentslots", http.NoBody)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				w := httptest.NewRecorder()
				engine.ServeHTTP(w, req)
			}
		})
	}
}

// BenchmarkUpdateContentSlot measures option synchronization alternating
// between two option sets so every request changes rows.
func BenchmarkUpdateContentSlot(b *testing.B) {
	engine, _ := setupRouter(b, 1, 8)

	bodies := [2]string{
		`{"viewId":1,"componentType":"Banner","columnStart":1,"columnEnd":2,"rowStart":1,"rowEnd":2,"options":{"opt0":"a","opt1":"b","extra":"x"}}`,
		`{"viewId":1,"componentType":"Banner","columnStart":1,"columnEnd":2,"rowStart":1,"rowEnd":2,"options":{"opt0":"c","opt2":"d"}}`,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/contentslots/1", strings.NewReader(bodies[i%2]))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
	}
}

// BenchmarkStoreGetByViewID measures the store without the HTTP layer.
func BenchmarkStoreGetByViewID(b *testing.B) {
	_, store := setupRouter(b, 20, 4)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := store.GetByViewID(ctx, 1); err != nil {
			b.Fatal(err)
		}
	}
}

// simpleHealthChecker is a minimal health checker for benchmarking.
type simpleHealthChecker struct {
	name string
}

func (s *simpleHealthChecker) Name() string {
	return s.name
}

func (s *simpleHealthChecker) Check(_ context.Context) error {
	return nil
}
