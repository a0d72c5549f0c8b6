package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/contentslots/internal/adapters/http/handlers"
	"github.com/jsamuelsen/contentslots/internal/app"
	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/mocks"
	"github.com/jsamuelsen/contentslots/internal/platform/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig(host string, port int) *config.ServerConfig {
	return &config.ServerConfig{
		Host:           host,
		Port:           port,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

func TestServerNew(t *testing.T) {
	cfg := testServerConfig("127.0.0.1", 8080)
	logger := discardLogger()

	srv := New(cfg, "test", logger)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, cfg, srv.Config())
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())
}

func TestGinMode(t *testing.T) {
	tests := []struct {
		environment string
		expected    string
	}{
		{"local", gin.DebugMode},
		{"test", gin.TestMode},
		{"dev", gin.ReleaseMode},
		{"prod", gin.ReleaseMode},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			assert.Equal(t, tt.expected, ginMode(tt.environment))
		})
	}
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(testServerConfig("127.0.0.1", 0), "test", discardLogger())

	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	var order []string

	srv.OnShutdown("database pool", func(context.Context) error {
		order = append(order, "database pool")
		return nil
	})
	srv.OnShutdown("telemetry", func(context.Context) error {
		order = append(order, "telemetry")
		return nil
	})

	errCh := srv.Start()

	addr := srv.Addr()
	require.NotEqual(t, "127.0.0.1:0", addr, "Addr reports the bound port")

	resp, err := http.Get("http://" + addr + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))
	assert.Equal(t, []string{"telemetry", "database pool"}, order)

	_, ok := <-errCh
	assert.False(t, ok, "error channel should be closed")
}

func TestServerShutdown_JoinsCloserErrors(t *testing.T) {
	srv := New(testServerConfig("127.0.0.1", 0), "test", discardLogger())

	errPool := errors.New("pool close failed")
	ran := false

	srv.OnShutdown("first", func(context.Context) error {
		ran = true
		return nil
	})
	srv.OnShutdown("database pool", func(context.Context) error { return errPool })

	errCh := srv.Start()

	err := srv.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errPool)
	assert.Contains(t, err.Error(), "database pool")
	assert.True(t, ran, "later closers still run")

	for range errCh {
	}
}

func TestServerStart_BindFailure(t *testing.T) {
	first := New(testServerConfig("127.0.0.1", 0), "test", discardLogger())
	_ = first.Start()
	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)

	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	second := New(testServerConfig("127.0.0.1", p), "test", discardLogger())

	err, ok := <-second.Start()
	require.True(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binding")
}

func TestMaxBodySizeMiddleware(t *testing.T) {
	cfg := testServerConfig("127.0.0.1", 0)
	cfg.MaxRequestSize = 16

	srv := New(cfg, "test", discardLogger())
	srv.Engine().POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": len(body)})
	})

	t.Run("under limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small")))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

// newRouterWithRepo builds the full router over a mock repository.
func newRouterWithRepo(t *testing.T, authCfg *config.AuthConfig, setupMock func(*mocks.MockContentSlotRepository)) *gin.Engine {
	t.Helper()

	repo := mocks.NewMockContentSlotRepository(t)
	if setupMock != nil {
		setupMock(repo)
	}

	service := app.NewContentSlotService(app.ContentSlotServiceConfig{Repository: repo, Logger: discardLogger()})

	engine := gin.New()
	SetupRouter(engine, NewDefaultRouterConfig(
		discardLogger(),
		&config.AppConfig{Name: "contentslots", Version: "test", Environment: "test"},
		authCfg,
		handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), handlers.BuildInfo{Version: "test"}),
		handlers.NewContentSlotHandler(service),
	))

	return engine
}

func TestNewDefaultRouterConfig(t *testing.T) {
	logger := discardLogger()
	appCfg := &config.AppConfig{Name: "test-app", Environment: "test", Version: "1.0.0"}
	authCfg := &config.AuthConfig{}
	healthHandler := handlers.NewHealthHandler(nil, handlers.BuildInfo{})

	cfg := NewDefaultRouterConfig(logger, appCfg, authCfg, healthHandler, nil)

	assert.Equal(t, logger, cfg.Logger)
	assert.Equal(t, appCfg, cfg.AppConfig)
	assert.Equal(t, authCfg, cfg.AuthConfig)
	assert.Equal(t, healthHandler, cfg.HealthHandler)
	assert.Nil(t, cfg.ContentSlotHandler)
	assert.Equal(t, DefaultRequestTimeout, cfg.Timeout)
}

func TestSetupRouter_Routes(t *testing.T) {
	engine := newRouterWithRepo(t, nil, nil)

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, expected := range []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /-/metrics",
		"POST /api/v1/contentslots",
		"GET /api/v1/contentslots",
		"GET /api/v1/contentslots/:id",
		"PUT /api/v1/contentslots/:id",
		"DELETE /api/v1/contentslots/:id",
		"GET /api/v1/views",
		"GET /api/v1/views/:viewId/contentslots",
	} {
		assert.True(t, routes[expected], "missing route: %s", expected)
	}
}

func TestSetupRouter_WithoutContentSlotHandler(t *testing.T) {
	engine := gin.New()

	require.NotPanics(t, func() {
		SetupRouter(engine, RouterConfig{
			Logger:    discardLogger(),
			AppConfig: &config.AppConfig{Name: "contentslots"},
		})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/views/1/contentslots", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRouter_ResponseCarriesRequestID(t *testing.T) {
	engine := newRouterWithRepo(t, nil, func(m *mocks.MockContentSlotRepository) {
		m.EXPECT().GetByViewID(mock.Anything, int64(1)).Return([]domain.ContentSlot{}, nil)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/views/1/contentslots", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_WriteAuth(t *testing.T) {
	const body = `{"viewId":1,"componentType":"Banner","columnStart":1,"columnEnd":2,"rowStart":1,"rowEnd":2}`

	tests := []struct {
		name           string
		authCfg        *config.AuthConfig
		headers        map[string]string
		setupMock      func(*mocks.MockContentSlotRepository)
		expectedStatus int
	}{
		{
			name:    "auth disabled",
			authCfg: &config.AuthConfig{Enabled: false},
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Create(mock.Anything, mock.Anything).Return(int64(1), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "auth enabled without subject",
			authCfg:        &config.AuthConfig{Enabled: true},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:    "auth enabled with subject",
			authCfg: &config.AuthConfig{Enabled: true},
			headers: map[string]string{"X-User-ID": "editor-1"},
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Create(mock.Anything, mock.Anything).Return(int64(1), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "write scope missing",
			authCfg:        &config.AuthConfig{Enabled: true, WriteScope: "layouts:write"},
			headers:        map[string]string{"X-User-ID": "editor-1", "X-User-Scopes": "layouts:read"},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:    "write scope granted",
			authCfg: &config.AuthConfig{Enabled: true, WriteScope: "layouts:write"},
			headers: map[string]string{"X-User-ID": "editor-1", "X-User-Scopes": "layouts:read layouts:write"},
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Create(mock.Anything, mock.Anything).Return(int64(1), nil)
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newRouterWithRepo(t, tt.authCfg, tt.setupMock)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/contentslots", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestSetupRouter_ReadsStayOpenWithAuth(t *testing.T) {
	engine := newRouterWithRepo(t, &config.AuthConfig{Enabled: true}, func(m *mocks.MockContentSlotRepository) {
		m.EXPECT().GetByID(mock.Anything, int64(2)).Return(domain.ContentSlot{ID: 2, Options: domain.Options{}}, true, nil)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/contentslots/2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
