// Package cache provides a TTL-keyed store with hit/miss statistics,
// bounded capacity, and optional on-disk persistence.
//
// Reads always check expiry before returning a hit. When the entry count
// exceeds the configured capacity the oldest entry is evicted. WithCache
// wraps a compute function so it runs at most once per miss; it does not
// provide cross-call single-flight protection by itself — compose the
// pool package's Batch for that.
package cache
