package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("jira transport error")

	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("jira decode error")
)

// TransportError is returned when a request fails at the HTTP level:
// a non-success status or a network failure (StatusCode 0).
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jira %s error (status %d) %s %s: %s: %v",
			e.ErrorClass, e.StatusCode, e.Method, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("jira %s error (status %d) %s %s: %s",
		e.ErrorClass, e.StatusCode, e.Method, e.URL, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransport as a match.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// DecodeError is returned when a response body is malformed or lacks a
// field the caller depends on.
type DecodeError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports ErrDecode as a match.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// classifyStatus maps an HTTP status to an ErrorClass.
// Returns "" for 2xx statuses.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return ""
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}
