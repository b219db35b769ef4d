package error

import "errors"

// Auth domain errors.
var (
	// ErrUnsupportedProvider is returned when the sign-in provider is not
	// google or apple.
	ErrUnsupportedProvider = errors.New("unsupported identity provider")

	// ErrInvalidIdentityToken is returned when the provider identity token
	// fails signature, audience or expiry verification.
	ErrInvalidIdentityToken = errors.New("invalid identity token")

	// ErrNonceMismatch is returned when the token's nonce claim does not
	// match the supplied nonce.
	ErrNonceMismatch = errors.New("nonce mismatch")

	// ErrNonceAlreadyUsed is returned when a nonce is replayed.
	ErrNonceAlreadyUsed = errors.New("nonce already used")

	// ErrMissingToken is returned when no session token is supplied.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken is returned when a session token is invalid or expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserNotFound is returned when no user exists for a subject.
	ErrUserNotFound = errors.New("user not found")
)

// AuthErrorCode defines error codes for auth errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	ErrCodeUnsupportedProvider  AuthErrorCode = "AUTH-010001"
	ErrCodeInvalidIdentityToken AuthErrorCode = "AUTH-010002"
	ErrCodeNonceMismatch        AuthErrorCode = "AUTH-010003"
	ErrCodeNonceAlreadyUsed     AuthErrorCode = "AUTH-010004"
	ErrCodeMissingToken         AuthErrorCode = "AUTH-020001"
	ErrCodeInvalidToken         AuthErrorCode = "AUTH-020002"
	ErrCodeUserNotFound         AuthErrorCode = "AUTH-020003"
	ErrCodeRateLimited          AuthErrorCode = "AUTH-030001"
)

// AuthError represents an auth error with code and message.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError with the given code and message.
func NewAuthError(code AuthErrorCode, message string, err error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
