package evalue8

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError wraps network-level failures (DNS, connection reset).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("evalue8: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError is returned when the upstream deadline elapses. It is
// distinct from TransportError so callers can tell a slow service from an
// unreachable one.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("evalue8: request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// StatusError is returned on a non-2xx HTTP response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("evalue8: authentication rejected (HTTP %d)", e.Status)
	case http.StatusNotFound:
		return fmt.Sprintf("evalue8: endpoint not found (HTTP %d), check environment configuration", e.Status)
	default:
		return fmt.Sprintf("evalue8: unexpected HTTP %d", e.Status)
	}
}

// MalformedResponseError is returned when the body is not valid JSON.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("evalue8: unexpected response format: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// UpstreamError is a syntactically valid response whose result code signals
// failure. Message is the service-provided explanation.
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("evalue8: %s (result %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("evalue8: request rejected (result %d)", e.Code)
}

// IsRetryableWithAlternateGuide reports whether a guide-parameter fallback
// attempt is warranted: the upstream either rejected the request outright or
// the endpoint 404ed.
func IsRetryableWithAlternateGuide(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == http.StatusNotFound
	}
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}
