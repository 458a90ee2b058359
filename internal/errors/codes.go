package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for ingestion and extraction
// operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeLLMUnavailable indicates the LLM service is not available.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeExtractionFailed indicates the model extraction could not be parsed.
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// ErrCodeStoreFailed indicates a persistence failure.
	ErrCodeStoreFailed ErrorCode = "STORE_FAILED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// AssistantError represents a structured error for assistant operations.
type AssistantError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AssistantError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AssistantError) Unwrap() error {
	return e.Cause
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeInvalidArgument, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string, cause error) *AssistantError {
	return &AssistantError{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// ExtractionFailed creates an extraction failed error.
func ExtractionFailed(msg string, cause error) *AssistantError {
	return &AssistantError{Code: ErrCodeExtractionFailed, Message: msg, Cause: cause}
}

// StoreFailed creates a persistence failure error.
func StoreFailed(msg string, cause error) *AssistantError {
	return &AssistantError{Code: ErrCodeStoreFailed, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *AssistantError {
	return &AssistantError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if aErr, ok := err.(*AssistantError); ok {
		return aErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an AssistantError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if aErr, ok := err.(*AssistantError); ok {
		return aErr.Code
	}
	return defaultCode
}
