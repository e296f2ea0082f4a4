// Package errors defines stable error codes for docwatch failure modes.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigMissing indicates required configuration is absent at startup.
	// This is the only fatal condition: nothing else aborts a run.
	ConfigMissing ErrorCode = "CONFIG_MISSING"
	// SourceUnavailable indicates a git query or file read failed
	SourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	// ExtractionFailed indicates a handler body could not be located or read
	ExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// GenerationFailed indicates all draft-generation attempts failed
	GenerationFailed ErrorCode = "GENERATION_FAILED"
	// DeliveryFailed indicates the notification could not be sent
	DeliveryFailed ErrorCode = "DELIVERY_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error is a docwatch error with a stable code and optional cause.
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new Error
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the stable code of err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return InternalError
}
