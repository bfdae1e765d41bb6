// Package autherr defines the error taxonomy shared by the auth client,
// the token exchanger, and the credential broker. Every failure a caller
// can observe maps onto exactly one of these shapes.
package autherr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEndpoint indicates the configured server base URL could not be parsed
	ErrInvalidEndpoint = errors.New("invalid auth endpoint URL")

	// ErrCapabilityUnavailable indicates interactive sign-in is not supported on this runtime
	ErrCapabilityUnavailable = errors.New("interactive sign-in is not available on this platform")

	// ErrMissingToken indicates no session token was present when one was required
	ErrMissingToken = errors.New("no session token available")

	// ErrCachedLoginDisabled indicates cached logins were disabled at construction time
	ErrCachedLoginDisabled = errors.New("cached logins are disabled")
)

// InvalidResponseError indicates a non-2xx response from the auth server
// or the exchange endpoint. Body carries the raw response payload so
// callers can surface server-provided detail.
type InvalidResponseError struct {
	Status int
	Body   string
}

func (e *InvalidResponseError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected response status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected response status %d", e.Status)
}

// DecodeError indicates a 2xx response whose body could not be decoded
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response body: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// TransportError indicates a network-level failure before any response
// was received. Op names the logical operation that was in flight.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
