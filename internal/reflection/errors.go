package reflection

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures across the engine. The taxonomy is small
// and deliberate:
//
//   - VALIDATION: bad or missing required input. Never retried; the caller
//     must correct the request.
//   - STORE_UNAVAILABLE: the durable medium could not be reached or written.
//     Surfaced as-is; this core never retries internally.
//   - NOT_FOUND: a semantically empty result, distinct from failure.
//   - SYNTHESIS_UNAVAILABLE: the external narrative collaborator failed or
//     timed out. Isolated so it never masks valid aggregation data.
type ErrorCode string

const (
	CodeValidation           ErrorCode = "VALIDATION"
	CodeStoreUnavailable     ErrorCode = "STORE_UNAVAILABLE"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeSynthesisUnavailable ErrorCode = "SYNTHESIS_UNAVAILABLE"
)

// Error is a categorized failure with an optional field reference and a
// wrapped cause. All components report failures through this type so
// callers can branch on the code rather than on message text.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending input field for validation errors.
	Field string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a VALIDATION error for a named field.
func NewValidationError(field, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Field: field}
}

// NewStoreUnavailableError wraps a storage-layer failure.
func NewStoreUnavailableError(op string, err error) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: op, Err: err}
}

// NewNotFoundError creates a NOT_FOUND error.
func NewNotFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// NewSynthesisUnavailableError wraps a summarizer failure.
func NewSynthesisUnavailableError(err error) *Error {
	return &Error{Code: CodeSynthesisUnavailable, Message: "summarizer failed", Err: err}
}

// CodeOf returns the error's code, or "" for errors outside the taxonomy.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

// IsStoreUnavailable reports whether err is a STORE_UNAVAILABLE error.
func IsStoreUnavailable(err error) bool { return CodeOf(err) == CodeStoreUnavailable }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsSynthesisUnavailable reports whether err is a SYNTHESIS_UNAVAILABLE error.
func IsSynthesisUnavailable(err error) bool { return CodeOf(err) == CodeSynthesisUnavailable }
