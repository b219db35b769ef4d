package error

import "errors"

// Shared entity-service errors. The services deliberately keep a small
// closed set: invalid id, not found, plus propagated store error kinds.
var (
	// ErrInvalidID is returned when an operation requires a persisted id
	// and the entity has none.
	ErrInvalidID = errors.New("invalid document id")

	// ErrNotFound is returned when an entity is absent from the local mirror.
	ErrNotFound = errors.New("entity not found")

	// ErrNameTooLong is returned when a name exceeds its per-entity limit.
	ErrNameTooLong = errors.New("name too long")

	// ErrInvalidColorFormat is returned when a color is not #RRGGBB/#RGB hex.
	ErrInvalidColorFormat = errors.New("invalid color format")

	// ErrNegativeAmount is returned when a price, count or expense amount
	// that must be non-negative is negative.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrInvalidYearMonth is returned when a year-month key is not "yyyy-MM".
	ErrInvalidYearMonth = errors.New("invalid year-month format")

	// ErrReasonTooLong is returned when an adjustment reason exceeds its limit.
	ErrReasonTooLong = errors.New("reason too long")

	// ErrIconTooLong is returned when an icon exceeds the emoji length limit.
	ErrIconTooLong = errors.New("icon too long")
)

// LedgerErrorCode defines error codes for entity service errors.
// Format: LED-XXYYYY where XX is category and YYYY is specific error.
type LedgerErrorCode string

const (
	ErrCodeInvalidID          LedgerErrorCode = "LED-010001"
	ErrCodeNotFound           LedgerErrorCode = "LED-010002"
	ErrCodeNameTooLong        LedgerErrorCode = "LED-010003"
	ErrCodeInvalidColorFormat LedgerErrorCode = "LED-010004"
	ErrCodeNegativeAmount     LedgerErrorCode = "LED-010005"
	ErrCodeInvalidYearMonth   LedgerErrorCode = "LED-010006"
	ErrCodeReasonTooLong      LedgerErrorCode = "LED-010007"
	ErrCodeIconTooLong        LedgerErrorCode = "LED-010008"
	ErrCodeMissingFields      LedgerErrorCode = "LED-010009"
)

// LedgerError represents an entity service error with code and message.
type LedgerError struct {
	Code    LedgerErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NewLedgerError creates a new LedgerError with the given code and message.
func NewLedgerError(code LedgerErrorCode, message string, err error) *LedgerError {
	return &LedgerError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
