package resilience

import (
	"sync"
	"time"
)

// BreakerState is one of the three circuit breaker states (spec §4.5).
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker tracks success/failure streaks and gates requests by
// state. It is safe for concurrent use: a breaker and its metrics may
// be shared across goroutines, so every accessor takes the mutex, the
// same discipline the teacher applies to its metrics counters
// (client/metrics.go).
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	successThreshold int
	timeout          time.Duration

	state           BreakerState
	failureCount    int
	successCount    int
	lastStateChange time.Time
}

// NewCircuitBreaker constructs a breaker in the closed state.
func NewCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		state:            StateClosed,
		lastStateChange:  time.Now(),
	}
}

// State returns the breaker's current state.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ShouldAllow reports whether a request may proceed, advancing
// open -> half_open when the cooldown has elapsed.
func (b *CircuitBreaker) ShouldAllow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(b.lastStateChange) >= b.timeout {
			b.transitionLocked(StateHalfOpen)
			b.failureCount = 0
			b.successCount = 0
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess reports a successful call.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.transitionLocked(StateClosed)
			b.failureCount = 0
			b.successCount = 0
		}
	case StateOpen:
		b.failureCount = 0
	}
}

// RecordFailure reports a failed call.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	switch b.state {
	case StateClosed:
		if b.failureCount >= b.failureThreshold {
			b.transitionLocked(StateOpen)
		}
	case StateHalfOpen:
		b.transitionLocked(StateOpen)
		b.successCount = 0
	case StateOpen:
		b.lastStateChange = time.Now()
	}
}

// Reset unconditionally returns the breaker to closed with zeroed
// counters.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked(StateClosed)
	b.failureCount = 0
	b.successCount = 0
}

// transitionLocked changes state and stamps lastStateChange; caller
// must hold b.mu.
func (b *CircuitBreaker) transitionLocked(to BreakerState) {
	b.state = to
	b.lastStateChange = time.Now()
}
