package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrNotStarted is returned when a request is made before Start.
	ErrNotStarted = errors.New("client not started: call Start() before making requests")

	// ErrClosed is returned when a request is made after Close.
	ErrClosed = errors.New("client closed")
)

// ErrorKind classifies request failures.
type ErrorKind string

const (
	// ErrorKindAPI represents an upstream HTTP status error (non-2xx).
	ErrorKindAPI ErrorKind = "api"

	// ErrorKindNetwork represents a connection-level failure.
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindTimeout represents a request that exceeded the client timeout.
	// Timeouts are a subtype of network errors.
	ErrorKindTimeout ErrorKind = "timeout"

	// ErrorKindParse represents a malformed JSON response body.
	ErrorKindParse ErrorKind = "parse"
)

// APIError is returned when the upstream responds with a non-2xx status.
// The status code and body text are preserved for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request to %s failed with status %d: %s",
		e.Endpoint, e.StatusCode, e.Body)
}

// Kind returns the error classification.
func (e *APIError) Kind() ErrorKind { return ErrorKindAPI }

// NetworkError is returned when the request never produced a usable
// response: DNS failures, connection resets, timeouts.
type NetworkError struct {
	Endpoint string
	Timeout  bool
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("API request to %s timed out: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("API request to %s failed due to a network error: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *NetworkError) Unwrap() error { return e.Err }

// Kind returns the error classification.
func (e *NetworkError) Kind() ErrorKind {
	if e.Timeout {
		return ErrorKindTimeout
	}
	return ErrorKindNetwork
}

// ParseError is returned when a response body cannot be decoded as JSON.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response from %s: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error { return e.Err }

// Kind returns the error classification.
func (e *ParseError) Kind() ErrorKind { return ErrorKindParse }

// KindOf reports the classification of a request error, or "" for
// errors that did not originate from the transport layer.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Kind()
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Kind()
	}
	return ""
}
