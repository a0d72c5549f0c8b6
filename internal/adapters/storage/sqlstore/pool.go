package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/ports"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultAcquireTimeout  = 5 * time.Second
)

// Pool errors.
var (
	// ErrCircuitOpen is returned while the acquisition breaker is open.
	ErrCircuitOpen = errors.New("database circuit breaker open")

	// ErrPoolTimeout is returned when no connection became available in time.
	ErrPoolTimeout = errors.New("timed out acquiring database connection")
)

var (
	dsnCredentialsPattern = regexp.MustCompile(`://[^@\s]+@`)
	dsnPasswordPattern    = regexp.MustCompile(`(?i)(password=)([^\s&]+)`)
	dsnUserinfoPattern    = regexp.MustCompile(`^[^:@/\s]+:[^@/\s]*@`)
)

// Conn is one exclusively owned database connection. Close returns it to the pool.
// *sql.Conn satisfies it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// Pool hands out exclusive connections, one per logical operation.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// PoolConfig configures the SQL connection pool.
type PoolConfig struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// AcquireTimeout bounds how long Acquire waits for a free connection.
	AcquireTimeout time.Duration

	Breaker BreakerConfig
	Logger  *slog.Logger
}

func (c *PoolConfig) initDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = defaultMaxOpenConns
	}

	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = defaultMaxIdleConns
	}

	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = defaultConnMaxLifetime
	}

	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = defaultConnMaxIdleTime
	}

	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = defaultAcquireTimeout
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// SQLPool is the database/sql backed Pool. It also reports database health.
type SQLPool struct {
	db             *sql.DB
	acquireTimeout time.Duration
	breaker        *breaker
	logger         *slog.Logger
}

var sqlOpen = sql.Open

// OpenPool opens the database, applies pool limits and verifies connectivity.
func OpenPool(ctx context.Context, cfg PoolConfig) (*SQLPool, error) {
	cfg.initDefaults()

	logger := cfg.Logger.With(
		slog.String("component", "sqlstore.Pool"),
		slog.String("dialect", cfg.Dialect.Name()),
	)

	logger.InfoContext(ctx, "opening database pool",
		slog.String("dsn", SanitizeDSN(cfg.DSN)),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
	)

	db, err := sqlOpen(cfg.Dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %s", cfg.Dialect.Name(), SanitizeDSN(err.Error()))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", cfg.Dialect.Name(), err)
	}

	return NewPool(db, cfg), nil
}

// NewPool wraps an already opened *sql.DB.
func NewPool(db *sql.DB, cfg PoolConfig) *SQLPool {
	cfg.initDefaults()

	p := &SQLPool{
		db:             db,
		acquireTimeout: cfg.AcquireTimeout,
		breaker:        newBreaker(cfg.Breaker),
		logger:         cfg.Logger.With(slog.String("component", "sqlstore.Pool")),
	}

	p.breaker.onStateChange = func(from, to BreakerState) {
		p.logger.Warn("database circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}

	return p
}

// Acquire returns an exclusive connection. Waiting is bounded by the acquire
// timeout; exhaustion and an open breaker both fail with *domain.StorageError.
func (p *SQLPool) Acquire(ctx context.Context) (Conn, error) {
	if !p.breaker.allow() {
		return nil, domain.NewStorageError("acquire", CodeCircuitOpen, ErrCircuitOpen)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.db.Conn(acquireCtx)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; that says nothing about database health.
			p.breaker.release()

			return nil, domain.NewStorageError("acquire", CodeCanceled, err)
		}

		p.breaker.failure()

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewStorageError("acquire", CodePoolTimeout, fmt.Errorf("%w after %s", ErrPoolTimeout, p.acquireTimeout))
		}

		return nil, domain.NewStorageError("acquire", CodeUnknown, err)
	}

	p.breaker.success()

	return conn, nil
}

// BreakerState returns the current acquisition breaker state.
func (p *SQLPool) BreakerState() BreakerState {
	return p.breaker.current()
}

// Stats exposes database/sql pool statistics.
func (p *SQLPool) Stats() sql.DBStats {
	return p.db.Stats()
}

// DB returns the underlying handle, for schema bootstrap.
func (p *SQLPool) DB() *sql.DB {
	return p.db
}

// Name implements ports.HealthChecker.
func (p *SQLPool) Name() string {
	return "database"
}

// Check implements ports.HealthChecker. An open breaker fails the check
// without touching the database; a half-open one reports degraded.
func (p *SQLPool) Check(ctx context.Context) error {
	switch p.breaker.current() {
	case BreakerOpen:
		return domain.NewStorageError("health", CodeCircuitOpen, ErrCircuitOpen)
	case BreakerHalfOpen:
		if err := p.db.PingContext(ctx); err != nil {
			return err
		}

		return fmt.Errorf("circuit breaker half-open: %w", ports.ErrDegraded)
	default:
		return p.db.PingContext(ctx)
	}
}

// Close closes every connection of the pool.
func (p *SQLPool) Close() error {
	return p.db.Close()
}

// SanitizeDSN masks credentials embedded in a DSN or in an error mentioning one.
func SanitizeDSN(value string) string {
	value = dsnCredentialsPattern.ReplaceAllString(value, "://***@")
	value = dsnPasswordPattern.ReplaceAllString(value, "${1}***")

	return dsnUserinfoPattern.ReplaceAllString(value, "***@")
}
