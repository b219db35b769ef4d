// Package error defines domain-specific errors for the Salon Ledger application.
package error

import "errors"

// Document store errors. Every gateway failure is surfaced exactly once to
// the caller; there are no retries anywhere in the persistence layer.
var (
	// ErrAddFailed is returned when creating a document fails.
	ErrAddFailed = errors.New("failed to add document")

	// ErrUpdateFailed is returned when writing or merging a document fails.
	ErrUpdateFailed = errors.New("failed to update document")

	// ErrDeleteFailed is returned when removing a document fails.
	ErrDeleteFailed = errors.New("failed to delete document")

	// ErrFetchFailed is returned when reading documents fails.
	ErrFetchFailed = errors.New("failed to fetch documents")

	// ErrDocumentNotFound is returned when a single-document read finds nothing.
	ErrDocumentNotFound = errors.New("document not found")
)

// StoreErrorCode defines error codes for document store errors.
// Format: STO-XXYYYY where XX is category and YYYY is specific error.
type StoreErrorCode string

const (
	ErrCodeAddFailed        StoreErrorCode = "STO-010001"
	ErrCodeUpdateFailed     StoreErrorCode = "STO-010002"
	ErrCodeDeleteFailed     StoreErrorCode = "STO-010003"
	ErrCodeFetchFailed      StoreErrorCode = "STO-010004"
	ErrCodeDocumentNotFound StoreErrorCode = "STO-010005"
)

// StoreError represents a document store error with code and message.
// Message carries the human-readable text of the underlying transport error.
type StoreError struct {
	Code    StoreErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given code and message.
func NewStoreError(code StoreErrorCode, message string, err error) *StoreError {
	return &StoreError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
