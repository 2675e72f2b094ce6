// Package errors defines the service-wide error codes and their HTTP mapping.
// Domain packages attach a Code at the point of failure; the transport layer
// translates it once, so status decisions never leak into handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers that need to branch without parsing
// message text.
type Code string

const (
	// CodeBadRequest marks malformed caller input. Never retried.
	CodeBadRequest Code = "bad_request"

	// CodeUnprocessable marks structurally valid input that could not be
	// verified (record absent, checksum rejected).
	CodeUnprocessable Code = "unprocessable"

	// CodeNotFound marks a missing resource.
	CodeNotFound Code = "not_found"

	// CodeUnavailable marks exhausted or unreachable upstream providers.
	CodeUnavailable Code = "unavailable"

	// CodeInternal marks an unexpected fault. Details are never surfaced.
	CodeInternal Code = "internal_error"
)

// Error carries a classification code alongside the usual error chain.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the classification from an error chain. Unclassified errors
// report CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// ToHTTPStatus maps a code to its HTTP status class.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnprocessable:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
