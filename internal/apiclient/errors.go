package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a non-2xx response from the API.
// Message carries the server's "message" field when it sent one.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unauthorized reports whether the server rejected the credentials.
func (e *HTTPError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// TransportError is a failure before any HTTP response arrived (DNS, refused connection, reset).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is a 2xx response whose body is not the expected JSON envelope.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected response from server: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func genericHTTPMessage(status int) string {
	return fmt.Sprintf("HTTP error %d", status)
}

// Message returns the text a view should show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Error()
	}

	return err.Error()
}

// StatusCode returns the HTTP status behind err, or 0 when there was none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
