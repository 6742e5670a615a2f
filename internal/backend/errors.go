package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericFailureMessage is shown when a failure carries no usable backend
// message.
const GenericFailureMessage = "Unable to reach the portal service. Please check your connection and try again."

// ErrInvalidArgument marks inputs rejected before any request is sent.
var ErrInvalidArgument = errors.New("invalid argument")

// APIError is a non-2xx response that carried a structured message.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

// IsClientError reports whether the status is in the 4xx range.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// ConflictError means the backend rejected a booking or reschedule, most
// often because the slot was taken concurrently. The slot must be treated
// as no longer valid.
type ConflictError struct {
	StatusCode int
	Message    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking conflict (%d): %s", e.StatusCode, e.Message)
}

// TransportError covers network failures, non-2xx responses without a
// structured message, and undecodable bodies.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error (%d) on %s %s: %v", e.StatusCode, e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("transport error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether the backend refused the bearer token.
func (e *TransportError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsConflict reports whether err (or any error in its chain) is a
// ConflictError.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsTransport reports whether err (or any error in its chain) is a
// TransportError.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}

// UserMessage returns the text to show for err: the backend-supplied
// message verbatim when there is one, otherwise GenericFailureMessage.
func UserMessage(err error) string {
	var conflict *ConflictError
	if errors.As(err, &conflict) && conflict.Message != "" {
		return conflict.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericFailureMessage
}

// asConflict converts a 4xx APIError into a ConflictError and passes
// every other error through.
func asConflict(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		return &ConflictError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return err
}
