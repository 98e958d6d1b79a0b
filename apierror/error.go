package apierror

import (
	"errors"
	"time"
)

// Kind identifies the classification of an API failure.
type Kind int

const (
	// KindUnknown is the generic unclassified kind. The original status and
	// body are preserved on the Error.
	KindUnknown Kind = iota
	// KindAuthentication indicates missing or invalid credentials (401).
	KindAuthentication
	// KindAuthorization indicates insufficient permissions (403).
	KindAuthorization
	// KindValidation indicates the request itself was malformed (400).
	// Validation failures are never retryable.
	KindValidation
	// KindNotFound indicates the requested resource does not exist (404).
	KindNotFound
	// KindRateLimit indicates a quota was exhausted (429).
	KindRateLimit
	// KindThrottling indicates the request rate was throttled (429 with a
	// throttling error code).
	KindThrottling
	// KindServer indicates a remote server failure (5xx).
	KindServer
	// KindNetwork indicates a connection-level failure with no status.
	KindNetwork
	// KindCircuitOpen indicates a circuit breaker rejected the call without
	// touching the network.
	KindCircuitOpen
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindThrottling:
		return "throttling"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// Error is a classified API failure. It is immutable once constructed.
type Error struct {
	// Kind is the classification. Exactly one kind per error.
	Kind Kind

	// Message is the human-readable description, preserved verbatim from
	// the underlying failure where one exists.
	Message string

	// Status is the original HTTP status, 0 for connection-level failures.
	Status int

	// Code is the remote error code extracted from the response, if any.
	Code string

	// Details carries structured context about the failure.
	Details map[string]any

	// RetryAfter is the server-requested wait before retrying, parsed from
	// the Retry-After header. Zero when the server gave no hint.
	RetryAfter time.Duration

	// Err is the underlying failure, if any.
	Err error
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// Unwrap returns the underlying failure so errors.Is and errors.As still
// match the original error after translation.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the kind is transient by nature. Validation
// failures are excluded: retrying reproduces the same input failure.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindServer, KindRateLimit, KindThrottling:
		return true
	default:
		return false
	}
}

// KindOf extracts the kind from any error. Errors that are not (and do not
// wrap) an *Error report KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}
