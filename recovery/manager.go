package recovery

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/apiward/apierror"
	"github.com/jonwraymond/apiward/observe"
)

// Manager orchestrates an ordered list of strategies around one operation.
type Manager struct {
	strategies []Strategy
	logger     observe.Logger
	metrics    *managerMetrics
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithStrategies sets the strategy list. Order is priority: the first
// strategy whose CanRecover reports true handles the failure.
func WithStrategies(strategies ...Strategy) ManagerOption {
	return func(m *Manager) {
		m.strategies = strategies
	}
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(logger observe.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMeter sets the meter used for recovery counters.
func WithMeter(meter metric.Meter) ManagerOption {
	return func(m *Manager) {
		m.metrics, _ = newManagerMetrics(meter)
	}
}

// NewManager creates a manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		logger: observe.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics, _ = newManagerMetrics(nil)
	}
	return m
}

// Execute invokes the operation. On failure the error is classified, the
// first strategy whose CanRecover reports true performs one recovery
// attempt, and its outcome is returned as-is. When no strategy applies the
// classified error propagates with kind and message preserved, so callers
// can pattern-match on kind.
func (m *Manager) Execute(ctx context.Context, op Operation) (any, error) {
	if op == nil {
		return nil, ErrNilOperation
	}

	result, err := op(ctx)
	if err == nil {
		return result, nil
	}

	derr := apierror.Translate(err)

	for _, s := range m.strategies {
		if !s.CanRecover(derr) {
			continue
		}

		name := strategyName(s)
		m.logger.Debug(ctx, "recovering from failure",
			observe.Field{Key: "strategy", Value: name},
			observe.Field{Key: "kind", Value: derr.Kind.String()},
		)
		m.metrics.recordAttempt(ctx, name)

		return s.Recover(ctx, derr, &Context{
			Operation: op,
			Cause:     derr,
		})
	}

	m.metrics.recordUnrecovered(ctx, derr.Kind.String())
	return nil, derr
}

// strategyName reports a stable label for metrics and logs.
func strategyName(s Strategy) string {
	switch s.(type) {
	case *RetryStrategy:
		return "retry"
	case *FallbackStrategy:
		return "fallback"
	case *CircuitBreaker:
		return "circuit_breaker"
	default:
		return fmt.Sprintf("%T", s)
	}
}

// Defaults configures the default manager factory.
type Defaults struct {
	// MaxRetries is the retry budget. Default: 3
	MaxRetries int

	// BaseDelay is the initial backoff delay. Default: 100ms
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay. Default: 30s
	MaxDelay time.Duration

	// Fallback, when set, recovers FallbackKinds with a substitute result.
	Fallback      FallbackFunc
	FallbackKinds []apierror.Kind

	// CircuitFailureThreshold opens the circuit after this many consecutive
	// tripping failures. Default: 5
	CircuitFailureThreshold int

	// CircuitResetTimeout is the open-state cooldown. Default: 30s
	CircuitResetTimeout time.Duration

	// TrippingKinds are the kinds counted by the circuit breaker.
	TrippingKinds []apierror.Kind

	Clock  Clock
	Logger observe.Logger
	Meter  metric.Meter
}

// NewDefaultManager wires Retry, Fallback and CircuitBreaker in that
// priority with conservative defaults. The fallback slot is skipped when no
// fallback function is configured.
func NewDefaultManager(d Defaults) *Manager {
	retry := NewRetryStrategy(RetryConfig{
		MaxRetries: d.MaxRetries,
		BaseDelay:  d.BaseDelay,
		MaxDelay:   d.MaxDelay,
		Jitter:     true,
		Clock:      d.Clock,
	})

	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: d.CircuitFailureThreshold,
		ResetTimeout:     d.CircuitResetTimeout,
		TrippingKinds:    d.TrippingKinds,
		Clock:            d.Clock,
	})

	strategies := []Strategy{retry}
	if d.Fallback != nil {
		strategies = append(strategies, NewFallbackStrategy(d.Fallback, d.FallbackKinds...))
	}
	strategies = append(strategies, breaker)

	opts := []ManagerOption{WithStrategies(strategies...), WithMeter(d.Meter)}
	if d.Logger != nil {
		opts = append(opts, WithLogger(d.Logger))
	}
	return NewManager(opts...)
}
