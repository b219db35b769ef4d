package error

import "errors"

// Report email errors.
var (
	// ErrPermanentReportFailure is returned for delivery failures that
	// should not be retried (auth, validation).
	ErrPermanentReportFailure = errors.New("permanent report delivery failure")

	// ErrTemporaryReportFailure is returned for delivery failures that may
	// succeed on a later attempt (rate limits, server errors).
	ErrTemporaryReportFailure = errors.New("temporary report delivery failure")
)

// ReportErrorCode defines error codes for report errors.
type ReportErrorCode string

const (
	ErrCodePermanentReportFailure ReportErrorCode = "RPT-010001"
	ErrCodeTemporaryReportFailure ReportErrorCode = "RPT-010002"
)

// ReportError represents a report delivery error with code and message.
type ReportError struct {
	Code    ReportErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewReportError creates a new ReportError with the given code and message.
func NewReportError(code ReportErrorCode, message string, err error) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsPermanent reports whether err marks a non-retryable delivery failure.
func IsPermanent(err error) bool {
	var repErr *ReportError
	if errors.As(err, &repErr) {
		return repErr.Code == ErrCodePermanentReportFailure
	}
	return false
}
