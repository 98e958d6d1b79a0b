package apierror

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPError is the transport-shaped failure supplied by the calling HTTP
// layer: a status, optional response headers, optional body, and an
// optional error code extracted from the body.
type HTTPError struct {
	Status int
	Header http.Header
	Body   string
	Code   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return "http " + strconv.Itoa(e.Status) + ": " + e.Body
	}
	return "http " + strconv.Itoa(e.Status)
}

// Translate classifies a raw transport failure into exactly one Error.
// Already-classified errors pass through unchanged. Failures that carry no
// HTTP status are connection-level and classify as KindNetwork.
//
// Translate is pure: the same input shape always yields the same kind.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var he *HTTPError
	if !errors.As(err, &he) {
		return &Error{
			Kind:    KindNetwork,
			Message: err.Error(),
			Err:     err,
		}
	}

	out := &Error{
		Status:  he.Status,
		Code:    he.Code,
		Message: message(he),
		Err:     err,
	}

	switch {
	case he.Status == http.StatusUnauthorized:
		out.Kind = KindAuthentication
	case he.Status == http.StatusForbidden:
		out.Kind = KindAuthorization
	case he.Status == http.StatusNotFound:
		out.Kind = KindNotFound
	case he.Status == http.StatusBadRequest || isValidationCode(he.Code):
		out.Kind = KindValidation
	case he.Status == http.StatusTooManyRequests:
		if isThrottlingCode(he.Code) {
			out.Kind = KindThrottling
		} else {
			out.Kind = KindRateLimit
		}
		out.RetryAfter = retryAfter(he.Header)
	case he.Status >= 500:
		out.Kind = KindServer
	default:
		// Unclassified: preserve the original status and body.
		out.Kind = KindUnknown
		out.Details = map[string]any{"status": he.Status}
		if he.Body != "" {
			out.Details["body"] = he.Body
		}
	}

	return out
}

func message(he *HTTPError) string {
	if he.Body != "" {
		return he.Body
	}
	return http.StatusText(he.Status)
}

// isThrottlingCode discriminates the two 429 flavors: codes that name
// throttling classify as KindThrottling, everything else (quota codes and
// bare 429s) as KindRateLimit.
func isThrottlingCode(code string) bool {
	return strings.Contains(strings.ToLower(code), "throttl")
}

func isValidationCode(code string) bool {
	c := strings.ToLower(code)
	return strings.Contains(c, "validation") || strings.Contains(c, "invalidinput")
}

// retryAfter parses the Retry-After header as a whole number of seconds.
// Malformed or missing values report zero.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
