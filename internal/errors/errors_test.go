package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		checkFn  func(error) bool
		expected bool
	}{
		{
			name:     "ErrNotFound is recognized",
			err:      ErrNotFound,
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Wrapped ErrNotFound is recognized",
			err:      errors.Join(ErrNotFound, errors.New("additional context")),
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Different error is not ErrNotFound",
			err:      ErrRateLimitExceeded,
			checkFn:  IsNotFound,
			expected: false,
		},
		{
			name:     "ErrRateLimitExceeded is recognized",
			err:      ErrRateLimitExceeded,
			checkFn:  IsRateLimitExceeded,
			expected: true,
		},
		{
			name:     "ErrInvalidInput is recognized",
			err:      ErrInvalidInput,
			checkFn:  IsInvalidInput,
			expected: true,
		},
		{
			name:     "ValidationError matches ErrInvalidInput",
			err:      NewValidationError("rating", "out of range"),
			checkFn:  IsInvalidInput,
			expected: true,
		},
		{
			name:     "ReferenceDataError matches ErrDataUnavailable",
			err:      NewReferenceDataError("mappings.json", errors.New("bad json")),
			checkFn:  IsDataUnavailable,
			expected: true,
		},
		{
			name:     "ReferenceDataError keeps wrapped cause",
			err:      NewReferenceDataError("mappings.json", ErrNotFound),
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "ErrTimeout is recognized through fmt wrapping",
			err:      fmt.Errorf("load catalog: %w", ErrTimeout),
			checkFn:  IsTimeout,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checkFn(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("riasecCode", "must be at most 3 letters")

	if err.Field != "riasecCode" {
		t.Errorf("expected field 'riasecCode', got '%s'", err.Field)
	}

	expected := "validation failed on riasecCode: must be at most 3 letters"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
}

func TestReferenceDataError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewReferenceDataError("occupation_major_mappings.json", cause)

	expected := "reference data error (key=occupation_major_mappings.json): unexpected EOF"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to match the cause")
	}
}
