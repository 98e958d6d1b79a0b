package recovery

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/apiward/apierror"
)

// DefaultRetryKinds are the error kinds the retry strategy recovers from.
// Validation and auth failures are excluded: retrying reproduces them.
var DefaultRetryKinds = []apierror.Kind{
	apierror.KindNetwork,
	apierror.KindServer,
	apierror.KindRateLimit,
	apierror.KindThrottling,
}

// RetryConfig configures the retry strategy.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts beyond the initial
	// failure. Default: 3
	MaxRetries int

	// BaseDelay is the backoff delay before the first retry.
	// Default: 100ms
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay. A server-supplied
	// retry-after is honored as-is and is not capped.
	// Default: 30s
	MaxDelay time.Duration

	// Jitter adds up to 25% randomness to computed delays to avoid
	// synchronized retry storms.
	Jitter bool

	// Kinds are the recoverable error kinds. Default: DefaultRetryKinds.
	Kinds []apierror.Kind

	// Clock is the time source. Default: RealClock.
	Clock Clock

	// OnRetry is called before each wait.
	OnRetry func(retryCount int, err error, delay time.Duration)
}

// RetryStrategy recovers transient failures by waiting and re-invoking the
// operation once per recovery attempt.
type RetryStrategy struct {
	config RetryConfig
	kinds  kindSet
}

// NewRetryStrategy creates a retry strategy.
func NewRetryStrategy(config RetryConfig) *RetryStrategy {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if len(config.Kinds) == 0 {
		config.Kinds = DefaultRetryKinds
	}
	if config.Clock == nil {
		config.Clock = RealClock{}
	}

	return &RetryStrategy{
		config: config,
		kinds:  newKindSet(config.Kinds),
	}
}

// CanRecover reports whether the error's kind is in the recoverable set.
func (s *RetryStrategy) CanRecover(err error) bool {
	return s.kinds.contains(err)
}

// Recover waits out the backoff (or the server-requested retry-after), then
// invokes the operation exactly once. When the retry budget is already
// exhausted it returns the original error without invoking the operation.
func (s *RetryStrategy) Recover(ctx context.Context, err error, rctx *Context) (any, error) {
	if rctx.RetryCount >= s.config.MaxRetries {
		return nil, err
	}

	delay := s.delayFor(err, rctx.RetryCount)

	if s.config.OnRetry != nil {
		s.config.OnRetry(rctx.RetryCount, err, delay)
	}

	timer := s.config.Clock.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C():
	}

	result, opErr := rctx.Operation(ctx)
	if opErr != nil {
		return nil, apierror.Translate(opErr)
	}
	return result, nil
}

// delayFor computes the wait before the next attempt. A server-supplied
// retry-after wins; otherwise exponential backoff doubling per retry,
// capped at MaxDelay, plus bounded jitter.
func (s *RetryStrategy) delayFor(err error, retryCount int) time.Duration {
	var ae *apierror.Error
	if errors.As(err, &ae) && ae.RetryAfter > 0 {
		return ae.RetryAfter
	}

	delay := time.Duration(float64(s.config.BaseDelay) * math.Pow(2, float64(retryCount)))
	if delay > s.config.MaxDelay {
		delay = s.config.MaxDelay
	}

	if s.config.Jitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}

	return delay
}

// Config returns the retry configuration.
func (s *RetryStrategy) Config() RetryConfig {
	return s.config
}

// Ensure RetryStrategy implements Strategy
var _ Strategy = (*RetryStrategy)(nil)
