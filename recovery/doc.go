// Package recovery provides error recovery strategies for outbound API
// calls and a manager that composes them around one operation.
//
// # Strategies
//
// The package provides the following strategies:
//
//   - Retry: waits out a server-requested retry-after or an exponential
//     backoff with jitter, then re-invokes the operation once.
//
//   - Fallback: substitutes the result of a fallback function for a
//     configured set of error kinds.
//
//   - Circuit Breaker: stops invoking a failing dependency after a failure
//     threshold and probes it again after a reset timeout.
//
// # Usage
//
// Strategies are evaluated in order by a Manager; the first one whose
// CanRecover reports true performs a single recovery attempt:
//
//	mgr := recovery.NewManager(
//	    recovery.WithStrategies(
//	        recovery.NewRetryStrategy(recovery.RetryConfig{MaxRetries: 3}),
//	        recovery.NewCircuitBreaker(recovery.CircuitBreakerConfig{FailureThreshold: 5}),
//	    ),
//	)
//
//	result, err := mgr.Execute(ctx, func(ctx context.Context) (any, error) {
//	    return callRemoteAPI(ctx)
//	})
//
// Failures reaching the manager are classified by apierror.Translate before
// any strategy evaluates them, so recoverability is always decided by kind
// membership, never by error type identity.
package recovery
