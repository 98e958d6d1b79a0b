// Package health reports the readiness of the resilience components.
//
// It provides checkers over the circuit breaker, the cache, and the
// connection pool, and an aggregator that combines them into one composite
// status: an open circuit is unhealthy, a half-open circuit or a poor cache
// hit ratio is degraded.
package health
