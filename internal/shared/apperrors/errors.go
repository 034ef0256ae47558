// Package apperrors defines the error types shared by the renewal flow.
// Controllers translate them into HTTP responses; services return them so
// callers can distinguish a failed fetch (recoverable, keep prior state)
// from a rejected submission (keep the session open) and from invalid
// input (block before any network call).
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// FetchError indicates that retrieving catalog or availability data failed.
// The affected option list keeps its previous snapshot; nothing is cleared.
type FetchError struct {
	Resource string // "catalog", "seats", "lockers", "shifts"
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err as a FetchError for the named resource.
func NewFetchError(resource string, err error) *FetchError {
	return &FetchError{Resource: resource, Err: err}
}

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ValidationError indicates required renewal fields are missing, the
// shift set is empty, or a selection references an option that is not
// offerable. It is raised before any database call is made.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// NewValidationError builds a ValidationError for the given field names.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// NewValidationMessage builds a ValidationError with a custom message.
func NewValidationMessage(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SubmitError carries the server-side rejection of a renewal payload. Its
// message is surfaced verbatim so the admin can correct and retry without
// losing input.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// NewSubmitError wraps err with the message reported to the user.
func NewSubmitError(message string, err error) *SubmitError {
	return &SubmitError{Message: message, Err: err}
}

// IsSubmitError reports whether err is (or wraps) a SubmitError.
func IsSubmitError(err error) bool {
	var se *SubmitError
	return errors.As(err, &se)
}

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrSessionNotFound is returned when a renewal session has expired or
// was never opened.
var ErrSessionNotFound = errors.New("renewal session not found")
