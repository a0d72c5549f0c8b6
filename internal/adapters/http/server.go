// Package http provides the HTTP adapter layer using Gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contentslots/internal/platform/config"
	"github.com/jsamuelsen/contentslots/internal/platform/logging"
)

// Server runs the Gin engine and owns the shutdown sequence: draining HTTP
// first, then releasing registered resources such as the database pool.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     *config.ServerConfig
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closers  []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New creates a server. Gin runs in debug mode only for the local environment.
func New(cfg *config.ServerConfig, environment string, logger *slog.Logger) *Server {
	gin.SetMode(ginMode(environment))

	engine := gin.New()
	engine.Use(maxBodySize(cfg.MaxRequestSize))

	logger = logger.With(slog.String("component", "http.Server"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		BaseContext: func(net.Listener) context.Context {
			return logging.WithContext(context.Background(), logger)
		},
	}

	return &Server{
		engine:     engine,
		httpServer: httpServer,
		config:     cfg,
		logger:     logger,
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfig {
	return s.config
}

// OnShutdown registers fn to run after HTTP draining. Closers run in reverse
// registration order.
func (s *Server) OnShutdown(name string, fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// Start binds the listener and serves in the background. Bind failures and
// serve errors arrive on the returned channel, which closes when serving ends.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		errCh <- fmt.Errorf("binding %s: %w", s.httpServer.Addr, err)
		close(errCh)

		return errCh
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		slog.String("addr", ln.Addr().String()),
		slog.Duration("read_timeout", s.config.ReadTimeout),
		slog.Duration("write_timeout", s.config.WriteTimeout),
	)

	go func() {
		defer close(errCh)

		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	return errCh
}

// Shutdown stops accepting requests, waits for in-flight ones within ctx and
// then runs the registered closers. Every closer runs even when an earlier
// step failed; the errors are joined.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	var errs []error

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}

	s.mu.Lock()
	closers := slices.Clone(s.closers)
	s.closers = nil
	s.mu.Unlock()

	for _, c := range slices.Backward(closers) {
		if err := c.fn(ctx); err != nil {
			s.logger.Error("shutdown step failed", slog.String("step", c.name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))

			continue
		}

		s.logger.Debug("shutdown step done", slog.String("step", c.name))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.Info("HTTP server stopped")

	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.httpServer.Addr
}

func ginMode(environment string) string {
	switch environment {
	case "local":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

func maxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
