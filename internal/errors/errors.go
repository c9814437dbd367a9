package errors

import (
	"fmt"
)

// ScoutError is the structured error type for codescout.
// It provides rich context for error handling, logging, and the tool-call
// boundary, which converts it into a tagged error outcome.
type ScoutError struct {
	// Code is the unique error code (e.g., "ERR_301_OUT_OF_SCOPE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Scope, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *ScoutError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ScoutError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ScoutError.
func (e *ScoutError) Is(target error) bool {
	if t, ok := target.(*ScoutError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ScoutError) WithDetail(key, value string) *ScoutError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new ScoutError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ScoutError {
	return &ScoutError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ScoutError from an existing error.
// The error's message becomes the ScoutError message.
func Wrap(code string, err error) *ScoutError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ValidationError creates an error for a missing or malformed argument.
func ValidationError(message string) *ScoutError {
	return New(ErrCodeInvalidInput, message, nil)
}

// ScopeError creates an error for a path resolving outside configured roots.
func ScopeError(path string) *ScoutError {
	return New(ErrCodeOutOfScope, fmt.Sprintf("path resolves outside configured roots: %s", path), nil).
		WithDetail("path", path)
}

// NotFoundError creates an error for an absent project or file.
func NotFoundError(message string) *ScoutError {
	return New(ErrCodeProjectNotFound, message, nil)
}

// CapacityError creates an error for a file exceeding the size cap.
// Capacity errors are recorded per file and never abort the batch.
func CapacityError(path string, size, limit int64) *ScoutError {
	return New(ErrCodeFileTooLarge,
		fmt.Sprintf("file exceeds size cap: %s (%d > %d bytes)", path, size, limit), nil).
		WithDetail("path", path)
}

// BackendUnavailable creates an error for a missing external search tool.
// It triggers the next fallback tier and is never surfaced as a failure.
func BackendUnavailable(tool string, cause error) *ScoutError {
	return New(ErrCodeToolUnavailable, fmt.Sprintf("search backend unavailable: %s", tool), cause).
		WithDetail("tool", tool)
}

// PersistenceError creates an error for an unreadable or corrupt index store.
// Callers degrade to an empty, rebuildable index instead of crashing.
func PersistenceError(message string, cause error) *ScoutError {
	return New(ErrCodeCorruptIndex, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ScoutError {
	return New(ErrCodeInternal, message, cause)
}

// IsCode reports whether err is a ScoutError with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*ScoutError); ok {
		return se.Code == code
	}
	return false
}
