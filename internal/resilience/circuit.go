// Package resilience guards outbound calls to platform pages that the
// capture loop depends on but does not control. A tripped breaker fails
// fast instead of letting a blocked upstream stall interception.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker rejects a call without
// attempting it.
var ErrCircuitOpen = eris.New("circuit open")

// State is the breaker's position.
type State int

const (
	// StateClosed lets calls through and counts failures.
	StateClosed State = iota
	// StateOpen rejects calls until the reset timeout elapses.
	StateOpen
	// StateHalfOpen lets a limited number of probe calls through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config controls when a breaker trips and how it recovers.
type Config struct {
	// FailureThreshold is the number of consecutive failures in the
	// closed state that trips the breaker.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before allowing
	// probes.
	ResetTimeout time.Duration
	// HalfOpenMaxProbes caps concurrent calls in the half-open state.
	HalfOpenMaxProbes int
}

// DefaultConfig suits page fetches against anti-scraping hosts: trip
// quickly, back off for half a minute, probe one request at a time.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:  5,
		ResetTimeout:      30 * time.Second,
		HalfOpenMaxProbes: 1,
	}
}

// CircuitBreaker tracks the health of one upstream and short-circuits
// calls while it is failing. Safe for concurrent use.
type CircuitBreaker struct {
	name string
	cfg  Config
	log  *zap.Logger

	mu           sync.Mutex
	state        State
	failures     int
	openedAt     time.Time
	probesInUse  int
	probeSuccess int

	// now is swapped in tests.
	now func() time.Time
}

// NewCircuitBreaker builds a closed breaker named for its upstream.
func NewCircuitBreaker(name string, cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxProbes <= 0 {
		cfg.HalfOpenMaxProbes = 1
	}
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg,
		state: StateClosed,
		log:   zap.L().With(zap.String("component", "resilience"), zap.String("breaker", name)),
		now:   time.Now,
	}
}

// State reports the breaker's current position, advancing open to
// half-open when the reset timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpen()
	return cb.state
}

// Execute runs fn under the breaker. When the breaker is open the call
// is rejected with ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.acquire(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.record(err)
	return err
}

// ExecuteVal is Execute for calls that return a value.
func ExecuteVal[T any](ctx context.Context, cb *CircuitBreaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := cb.acquire(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	cb.record(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Reset forces the breaker closed and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.maybeHalfOpen()

	switch cb.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if cb.probesInUse >= cb.cfg.HalfOpenMaxProbes {
			return ErrCircuitOpen
		}
		cb.probesInUse++
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if err == nil {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.probesInUse--
		if err != nil {
			cb.transition(StateOpen)
			return
		}
		cb.probeSuccess++
		if cb.probeSuccess >= cb.cfg.HalfOpenMaxProbes {
			cb.transition(StateClosed)
		}
	}
}

// maybeHalfOpen moves an expired open breaker to half-open. Caller
// holds cb.mu.
func (cb *CircuitBreaker) maybeHalfOpen() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		cb.transition(StateHalfOpen)
	}
}

// transition switches state and resets the counters that belong to the
// new state. Caller holds cb.mu.
func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		cb.failures = 0
		return
	}
	prev := cb.state
	cb.state = next
	cb.failures = 0
	cb.probesInUse = 0
	cb.probeSuccess = 0
	if next == StateOpen {
		cb.openedAt = cb.now()
	}
	cb.log.Info("breaker state change",
		zap.String("from", prev.String()),
		zap.String("to", next.String()))
}
