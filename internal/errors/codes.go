// Package errors provides structured error handling for codescout.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO and capacity errors
//   - 3XX: Scope and lookup errors
//   - 4XX: Validation errors
//   - 5XX: Internal and backend errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file, disk, and capacity errors.
	CategoryIO Category = "IO"
	// CategoryScope indicates path containment and lookup errors.
	CategoryScope Category = "SCOPE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound  = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFileTooLarge  = "ERR_202_FILE_TOO_LARGE"
	ErrCodeCorruptIndex  = "ERR_203_CORRUPT_INDEX"
	ErrCodeIndexLocked   = "ERR_204_INDEX_LOCKED"

	// Scope errors (300-399)
	ErrCodeOutOfScope      = "ERR_301_OUT_OF_SCOPE"
	ErrCodeProjectNotFound = "ERR_302_PROJECT_NOT_FOUND"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidQuery = "ERR_402_INVALID_QUERY"
	ErrCodeInvalidPath  = "ERR_403_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeSearchFailed    = "ERR_502_SEARCH_FAILED"
	ErrCodeIndexFailed     = "ERR_503_INDEX_FAILED"
	ErrCodeToolUnavailable = "ERR_504_TOOL_UNAVAILABLE"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryScope
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex:
		// Corrupt persisted state degrades to an empty rebuildable index.
		return SeverityWarning
	case ErrCodeToolUnavailable, ErrCodeFileTooLarge:
		// Tool absence triggers a fallback tier; oversized files are
		// recorded per file and never abort the batch.
		return SeverityWarning
	}
	return SeverityError
}
