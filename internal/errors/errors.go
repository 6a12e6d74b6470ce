// Package errors provides structured error types for the pallet system.
// All errors include a category, code, message, and optional cause for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategorySnapshot   ErrorCategory = "SNAPSHOT"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidConfig    = "INVALID_CONFIG"
	CodeInvalidRecord    = "INVALID_RECORD"
	CodeInvalidPartition = "INVALID_PARTITION"

	// Storage codes
	CodeOpenFailed   = "OPEN_FAILED"
	CodeReadFailed   = "READ_FAILED"
	CodeWriteFailed  = "WRITE_FAILED"
	CodeDeleteFailed = "DELETE_FAILED"

	// Snapshot codes
	CodeCompressFailed  = "COMPRESS_FAILED"
	CodeManifestCorrupt = "MANIFEST_CORRUPT"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// PalletError is the structured error type used throughout the system.
type PalletError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *PalletError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PalletError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *PalletError) Is(target error) bool {
	var t *PalletError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new PalletError.
func New(category ErrorCategory, code, message string) *PalletError {
	return &PalletError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new PalletError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *PalletError {
	return &PalletError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a PalletError.
func GetCategory(err error) ErrorCategory {
	var pe *PalletError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a PalletError.
func GetCode(err error) string {
	var pe *PalletError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsStorage reports whether the error chain contains a storage-category
// error. The warehouse facade uses this to decide which failures collapse
// to "no data" in compatibility mode.
func IsStorage(err error) bool {
	return GetCategory(err) == ErrCategoryStorage
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *PalletError {
	return New(ErrCategoryValidation, code, message)
}

func NewStorageError(code, message string, cause error) *PalletError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewSnapshotError(code, message string, cause error) *PalletError {
	return Wrap(ErrCategorySnapshot, code, message, cause)
}

func NewInternalError(message string, cause error) *PalletError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
