// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrDataUnavailable indicates reference data could not be loaded or parsed.
	ErrDataUnavailable = errors.New("reference data unavailable")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrAssistantDisabled indicates no assistant API key is configured.
	ErrAssistantDisabled = errors.New("assistant disabled")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDataUnavailable reports whether err is or wraps ErrDataUnavailable.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

// IsRateLimitExceeded reports whether err is or wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// IsInvalidInput reports whether err is or wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout reports whether err is or wraps ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ReferenceDataError represents a failure to load or decode one reference document.
type ReferenceDataError struct {
	Key string
	Err error
}

func (e *ReferenceDataError) Error() string {
	return fmt.Sprintf("reference data error (key=%s): %v", e.Key, e.Err)
}

// Unwrap returns both the cause and ErrDataUnavailable so either can be matched.
func (e *ReferenceDataError) Unwrap() []error {
	return []error{e.Err, ErrDataUnavailable}
}

// NewReferenceDataError creates a new reference data error.
func NewReferenceDataError(key string, err error) *ReferenceDataError {
	return &ReferenceDataError{
		Key: key,
		Err: err,
	}
}
