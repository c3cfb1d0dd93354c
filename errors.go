package minigql

import (
	"errors"
	"fmt"
)

// Error type identifiers carried by ClientError.Type.
const (
	// ErrorTypeValidation marks configuration or call-time argument errors.
	// These surface synchronously, before any network activity.
	ErrorTypeValidation = "Validation"

	// ErrorTypeNetwork marks a transport failure: the Transport returned an
	// error before any HTTP status was known. Retryable.
	ErrorTypeNetwork = "Network"

	// ErrorTypeServer marks a 5xx response. Retryable; on exhaustion the
	// error is derived from the last observed 5xx.
	ErrorTypeServer = "Server"

	// ErrorTypeClient marks a non-5xx, non-2xx response (4xx and similar).
	// Never retried.
	ErrorTypeClient = "Client"

	// ErrorTypeDecode marks a 2xx response whose body was not valid JSON.
	ErrorTypeDecode = "Decode"

	// ErrorTypeRateLimit marks a request denied by the client-side rate
	// limiter before it reached the wire.
	ErrorTypeRateLimit = "RateLimit"

	// ErrorTypeCircuitOpen marks a request rejected by an open circuit
	// breaker.
	ErrorTypeCircuitOpen = "CircuitBreaker"
)

// ClientError is the error type returned by Query and Mutate. Type
// classifies the failure, Cause carries the underlying error when one exists
// (e.g. the original transport error), and Attempt/MaxRetries record where in
// the retry loop the failure was observed.
type ClientError struct {
	Type       string
	Message    string
	Cause      error
	StatusCode int
	Attempt    int
	MaxRetries int
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries+1)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// IsTransient reports whether err represents a failure that might succeed on
// a later attempt: transport failures, 5xx responses, rate limiting and open
// circuits. 4xx responses (except 429) and validation errors are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}

	switch clientErr.Type {
	case ErrorTypeNetwork, ErrorTypeServer, ErrorTypeRateLimit, ErrorTypeCircuitOpen:
		return true
	case ErrorTypeClient:
		return clientErr.StatusCode == 429
	default:
		return false
	}
}
