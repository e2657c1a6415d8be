package api

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks at call sites.
var (
	// ErrTransport indicates the events endpoint could not be reached
	// or answered with a non-success status.
	ErrTransport = errors.New("transport failure")

	// ErrDecode indicates the response body did not match the events
	// envelope schema.
	ErrDecode = errors.New("decode failure")
)

// TransportError is a network or HTTP-level failure reaching the events
// endpoint. Fatal to a wait engine: blind retrying will not fix a
// network that is down or an endpoint that moved.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when the request never completed
	cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport failure: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("transport failure reaching %s: %v", e.Endpoint, e.cause)
}

func (e *TransportError) Unwrap() error {
	return e.cause
}

// Is lets errors.Is(err, ErrTransport) match any transport failure.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// DecodeError is a response body that is not a valid events envelope.
// Non-fatal: the provider serves transient garbage in practice, so a
// wait engine treats this as "no data this round".
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failure: %v", e.cause)
}

func (e *DecodeError) Unwrap() error {
	return e.cause
}

// Is lets errors.Is(err, ErrDecode) match any decode failure.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NewTransportError builds a transport-level failure for an endpoint.
func NewTransportError(endpoint string, statusCode int, cause error) *TransportError {
	return &TransportError{Endpoint: endpoint, StatusCode: statusCode, cause: cause}
}

// NewDecodeError wraps a schema or JSON decoding failure.
func NewDecodeError(cause error) *DecodeError {
	return &DecodeError{cause: cause}
}
