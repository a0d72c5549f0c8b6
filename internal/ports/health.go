package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/contentslots/internal/domain"
)

const (
	defaultCheckTimeout     = 2 * time.Second
	defaultCheckConcurrency = 4
)

var (
	// ErrDuplicateChecker is returned when a checker name is registered twice.
	ErrDuplicateChecker = errors.New("duplicate health checker")

	// ErrDegraded marks a component that still serves requests in an impaired
	// state. Checkers wrap it; the registry reports such a check as degraded
	// rather than unhealthy.
	ErrDegraded = errors.New("degraded")
)

// HealthChecker is implemented by components that can report their health.
//
// The database pool is the main implementation: it pings the database and
// reports an open acquisition breaker as unhealthy and a half-open one as
// degraded.
type HealthChecker interface {
	// Name identifies the check in readiness responses. It must be unique.
	Name() string

	// Check returns nil when healthy. Errors wrapping ErrDegraded downgrade
	// the component instead of failing it.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	Register(checker HealthChecker) error

	// CheckAll runs every registered check, each under its own deadline.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents a health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one wins.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of one checker.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`

	// Code carries the storage error code when the check failed with one,
	// e.g. CIRCUIT_OPEN.
	Code string `json:"code,omitempty"`

	Duration time.Duration `json:"duration"`
}

// RegistryOption configures a DefaultHealthRegistry.
type RegistryOption func(*DefaultHealthRegistry)

// WithCheckTimeout bounds each individual check. Non-positive values are ignored.
func WithCheckTimeout(d time.Duration) RegistryOption {
	return func(r *DefaultHealthRegistry) {
		if d > 0 {
			r.checkTimeout = d
		}
	}
}

// WithCheckConcurrency limits how many checks run at once. Non-positive
// values are ignored.
func WithCheckConcurrency(n int) RegistryOption {
	return func(r *DefaultHealthRegistry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// DefaultHealthRegistry is a thread-safe HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker

	checkTimeout time.Duration
	concurrency  int
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry(opts ...RegistryOption) *DefaultHealthRegistry {
	r := &DefaultHealthRegistry{
		checkers:     make(map[string]HealthChecker),
		checkTimeout: defaultCheckTimeout,
		concurrency:  defaultCheckConcurrency,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	if _, ok := r.checkers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}

	r.checkers[name] = checker

	return nil
}

// Names returns the registered checker names in sorted order.
func (r *DefaultHealthRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// CheckAll runs the registered checks concurrently and reports the worst status.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, 0, len(r.checkers))
	for _, c := range r.checkers {
		checkers = append(checkers, c)
	}
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)

	g.SetLimit(r.concurrency)

	for _, checker := range checkers {
		g.Go(func() error {
			checkResult := r.run(ctx, checker)

			mu.Lock()
			defer mu.Unlock()

			result.Checks[checker.Name()] = checkResult
			if checkResult.Status.severity() > result.Status.severity() {
				result.Status = checkResult.Status
			}

			return nil
		})
	}

	_ = g.Wait()

	return result
}

func (r *DefaultHealthRegistry) run(ctx context.Context, checker HealthChecker) *CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, r.checkTimeout)
	defer cancel()

	start := time.Now()
	err := checker.Check(checkCtx)

	res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
	if err == nil {
		return res
	}

	res.Message = err.Error()
	res.Status = HealthStatusUnhealthy

	if errors.Is(err, ErrDegraded) {
		res.Status = HealthStatusDegraded
	}

	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		res.Code = storageErr.Code
	}

	return res
}
