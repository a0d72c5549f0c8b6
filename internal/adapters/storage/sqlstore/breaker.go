package sqlstore

import (
	"sync"
	"time"
)

// BreakerState is the state of the acquisition circuit breaker.
type BreakerState int

const (
	// BreakerClosed lets every acquisition through.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects acquisitions until the cool-down elapses.
	BreakerOpen

	// BreakerHalfOpen lets a limited number of probes through.
	BreakerHalfOpen
)

// String returns a human-readable name for the state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the acquisition circuit breaker.
// A zero MaxFailures disables the breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive acquisition failures that opens the circuit.
	MaxFailures int

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// HalfOpenLimit is the number of successful probes needed to close again.
	HalfOpenLimit int
}

// breaker fails connection acquisition fast while the database keeps refusing
// connections, so callers do not each wait out the acquire timeout.
//
// Transitions:
//   - closed → open: MaxFailures consecutive failures
//   - open → half-open: Timeout elapsed
//   - half-open → closed: HalfOpenLimit consecutive successes
//   - half-open → open: any failure
type breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     BreakerState
	failures  int
	successes int
	probes    int
	openedAt  time.Time
	now       func() time.Time

	onStateChange func(from, to BreakerState)
}

func newBreaker(cfg BreakerConfig) *breaker {
	if cfg.HalfOpenLimit <= 0 {
		cfg.HalfOpenLimit = 1
	}

	return &breaker{cfg: cfg, now: time.Now}
}

func (b *breaker) enabled() bool {
	return b != nil && b.cfg.MaxFailures > 0
}

// allow reports whether an acquisition may proceed.
func (b *breaker) allow() bool {
	if !b.enabled() {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Timeout {
			return false
		}

		b.transition(BreakerHalfOpen)
		b.probes = 1

		return true
	case BreakerHalfOpen:
		if b.probes >= b.cfg.HalfOpenLimit {
			return false
		}

		b.probes++

		return true
	default:
		return false
	}
}

func (b *breaker) success() {
	if !b.enabled() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.probes--
		b.successes++

		if b.successes >= b.cfg.HalfOpenLimit {
			b.transition(BreakerClosed)
		}
	}
}

func (b *breaker) failure() {
	if !b.enabled() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.probes--
		b.transition(BreakerOpen)
	}
}

// release hands back a half-open probe slot whose outcome says nothing about
// the database, such as a caller that gave up while waiting.
func (b *breaker) release() {
	if !b.enabled() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen && b.probes > 0 {
		b.probes--
	}
}

func (b *breaker) current() BreakerState {
	if b == nil {
		return BreakerClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// transition must be called with mu held.
func (b *breaker) transition(to BreakerState) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0

	if to == BreakerOpen {
		b.openedAt = b.now()
		b.probes = 0
	}

	if b.onStateChange != nil {
		go b.onStateChange(from, to)
	}
}
