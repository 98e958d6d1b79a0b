// Package pool maintains the shared network agents for one client and
// coalesces concurrent identical requests.
//
// Two long-lived transports (plain and TLS) amortize connection setup
// across every call the client makes. Batch shares one in-flight call's
// result among concurrent callers requesting the same key; CleanupBatches
// bounds growth from calls that never settle.
package pool
