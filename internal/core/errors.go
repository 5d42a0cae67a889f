// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors. Missing financial data is never an error in this
// codebase; these cover lookups, collaborators and misconfiguration.
var (
	// Data errors
	ErrStockNotFound = &Error{Code: "STOCK_NOT_FOUND", Message: "stock not found"}
	ErrEmptyRecord   = &Error{Code: "EMPTY_RECORD", Message: "financial record carries no data"}

	// Collector errors
	ErrCollectorFailed  = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}
	ErrCollectorTimeout = &Error{Code: "COLLECTOR_TIMEOUT", Message: "collector timeout"}

	// Scoring errors (misconfiguration only; bad input data degrades, it does not error)
	ErrInvalidWeights = &Error{Code: "INVALID_WEIGHTS", Message: "category weights must sum to 1.0"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Reasoner errors
	ErrReasonerFailed  = &Error{Code: "REASONER_FAILED", Message: "reasoning request failed"}
	ErrReasonerTimeout = &Error{Code: "REASONER_TIMEOUT", Message: "reasoning request timeout"}

	// Storage errors
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archive operation failed"}
)
