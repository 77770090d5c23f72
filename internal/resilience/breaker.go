// Package resilience provides the circuit breaker guarding calls to the
// upstream order-management API.
//
// A voice call cannot wait out a dead upstream: when the order API starts
// failing, the breaker trips and submissions fail fast with a clear error
// instead of stalling the conversation. The breaker never retries: the
// order pipeline makes exactly one submission attempt per order.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] when the breaker has tripped and the
// cooldown has not yet elapsed.
var ErrOpen = errors.New("circuit breaker is open")

// state is the breaker's operating mode.
type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

func (s state) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds tuning knobs for a [Breaker]. Zero-value fields get
// defaults.
type Config struct {
	// Name labels the breaker in log messages.
	Name string

	// FailureThreshold is how many consecutive failures trip the breaker.
	// Default: 5.
	FailureThreshold int

	// Cooldown is how long the breaker stays open before allowing a probe
	// call. Default: 30s.
	Cooldown time.Duration
}

// Breaker is a three-state (closed, open, half-open) circuit breaker. In
// the half-open state a single probe call is allowed through; its outcome
// decides whether the breaker closes again or re-opens.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    state
	failures int
	openedAt time.Time
	probing  bool
}

// New creates a [Breaker] with the supplied configuration.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.FailureThreshold,
		cooldown:  cfg.Cooldown,
	}
}

// Do runs fn if the breaker allows it. While open it returns [ErrOpen]
// without calling fn; after the cooldown a single probe call is let
// through.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	b.settle(err)
	return err
}

// admit decides whether a call may proceed, transitioning open→half-open
// when the cooldown has elapsed.
func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return ErrOpen
		}
		b.state = stateHalfOpen
		b.probing = true
		slog.Info("circuit breaker probing after cooldown", "name", b.name)
		return nil
	case stateHalfOpen:
		if b.probing {
			// A probe is already in flight; shed everything else.
			return ErrOpen
		}
		b.probing = true
		return nil
	default:
		return nil
	}
}

// settle records the call outcome.
func (b *Breaker) settle(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.state != stateClosed {
			slog.Info("circuit breaker closed", "name", b.name)
		}
		b.state = stateClosed
		b.failures = 0
		b.probing = false
		return
	}

	b.failures++
	b.probing = false
	if b.state == stateHalfOpen || b.failures >= b.threshold {
		if b.state != stateOpen {
			slog.Warn("circuit breaker opened",
				"name", b.name,
				"consecutive_failures", b.failures)
		}
		b.state = stateOpen
		b.openedAt = time.Now()
	}
}

// Healthy reports whether the breaker would currently admit a call.
func (b *Breaker) Healthy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == stateClosed ||
		(b.state == stateOpen && time.Since(b.openedAt) >= b.cooldown) ||
		(b.state == stateHalfOpen && !b.probing)
}

// Reset forces the breaker back to closed, clearing all failure counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = stateClosed
	b.failures = 0
	b.probing = false
	slog.Info("circuit breaker manually reset", "name", b.name)
}
