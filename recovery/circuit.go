package recovery

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/apiward/apierror"
)

// CircuitState represents the circuit breaker state.
type CircuitState int

const (
	// StateClosed means calls flow normally.
	StateClosed CircuitState = iota
	// StateOpen means calls are rejected without touching the network.
	StateOpen
	// StateHalfOpen means exactly one probe may test whether the
	// dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s CircuitState) String() string {
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

// DefaultTrippingKinds are the error kinds that count toward opening the
// circuit.
var DefaultTrippingKinds = []apierror.Kind{
	apierror.KindNetwork,
	apierror.KindServer,
}

// CircuitBreakerConfig configures the circuit breaker strategy.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive tripping failures
	// before the circuit opens. Default: 5
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before permitting a
	// probe. Default: 30s
	ResetTimeout time.Duration

	// TrippingKinds are the error kinds that count as failures.
	// Default: DefaultTrippingKinds.
	TrippingKinds []apierror.Kind

	// Clock is the time source. Default: RealClock.
	Clock Clock

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to CircuitState)
}

// CircuitBreaker guards an operation with the three-state breaker machine.
// One instance lives for the lifetime of the hosting client and its state
// persists across calls.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	kinds  kindSet

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probing  bool
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if len(config.TrippingKinds) == 0 {
		config.TrippingKinds = DefaultTrippingKinds
	}
	if config.Clock == nil {
		config.Clock = RealClock{}
	}

	return &CircuitBreaker{
		config: config,
		kinds:  newKindSet(config.TrippingKinds),
		state:  StateClosed,
	}
}

// circuitOpenError is the rejection returned while the circuit is open.
func circuitOpenError() *apierror.Error {
	return apierror.New(apierror.KindCircuitOpen, "circuit breaker is open")
}

// CanRecover reports whether the breaker will accept a recovery attempt:
// false while open, true while half-open, and kind membership while closed.
func (cb *CircuitBreaker) CanRecover(err error) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return false
	case StateHalfOpen:
		return true
	default:
		return cb.kinds.contains(err)
	}
}

// Recover executes the guarded operation subject to the state machine.
// While open it rejects without invoking the operation. While half-open it
// permits exactly one probe whose outcome drives the next transition.
func (cb *CircuitBreaker) Recover(ctx context.Context, _ error, rctx *Context) (any, error) {
	cb.mu.Lock()

	switch cb.currentStateLocked() {
	case StateOpen:
		cb.mu.Unlock()
		return nil, circuitOpenError()

	case StateHalfOpen:
		if cb.probing {
			// A probe is already in flight; reject like open.
			cb.mu.Unlock()
			return nil, circuitOpenError()
		}
		cb.probing = true
		cb.mu.Unlock()

		result, err := rctx.Operation(ctx)
		cb.settleProbe(err)
		if err != nil {
			return nil, apierror.Translate(err)
		}
		return result, nil

	default: // StateClosed
		cb.mu.Unlock()

		result, err := rctx.Operation(ctx)
		if err == nil {
			return result, nil
		}
		derr := apierror.Translate(err)
		cb.recordFailure(derr)
		return nil, derr
	}
}

// settleProbe applies the half-open probe outcome: success closes the
// circuit and clears the failure count; a tripping failure reopens it and
// restarts the reset timer.
func (cb *CircuitBreaker) settleProbe(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false

	if err == nil {
		cb.transitionLocked(StateClosed)
		cb.failures = 0
		return
	}

	if cb.kinds.contains(apierror.Translate(err)) {
		cb.openedAt = cb.config.Clock.Now()
		cb.transitionLocked(StateOpen)
	}
}

// recordFailure counts a closed-state tripping failure and opens the
// circuit once the threshold is reached. Successes do not reset the count;
// only a successful half-open probe does.
func (cb *CircuitBreaker) recordFailure(derr *apierror.Error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateClosed {
		return
	}
	if _, tripping := cb.kinds[derr.Kind]; !tripping {
		return
	}

	cb.failures++
	if cb.failures >= cb.config.FailureThreshold {
		cb.openedAt = cb.config.Clock.Now()
		cb.transitionLocked(StateOpen)
	}
}

// currentStateLocked applies the scheduled OPEN -> HALF_OPEN transition
// lazily against the injected clock.
func (cb *CircuitBreaker) currentStateLocked() CircuitState {
	if cb.state == StateOpen && cb.config.Clock.Since(cb.openedAt) >= cb.config.ResetTimeout {
		cb.probing = false
		cb.transitionLocked(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) transitionLocked(to CircuitState) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the breaker back to closed and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.transitionLocked(StateClosed)
	cb.failures = 0
	cb.probing = false
}

// Metrics contains circuit breaker statistics.
type Metrics struct {
	State    CircuitState
	Failures int
	OpenedAt time.Time
}

// Metrics returns a snapshot of the breaker's counters.
func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Metrics{
		State:    cb.currentStateLocked(),
		Failures: cb.failures,
		OpenedAt: cb.openedAt,
	}
}

// Ensure CircuitBreaker implements Strategy
var _ Strategy = (*CircuitBreaker)(nil)
