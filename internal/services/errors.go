package services

import "errors"

// Error classes. Every error returned by a service either matches one of
// these with errors.Is or is an internal failure.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error is a service error carrying a client-facing message.
// It matches its Kind (and the Kind's own chain) with errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ErrValidation marks malformed or out-of-range request data, as opposed to
// input that is well-formed but rejected by a business rule.
var ErrValidation = newError(ErrInvalidInput, "validation error")

var (
	ErrUnauthorized        = newError(ErrUnauthenticated, "Unauthorized")
	ErrNotSuperuser        = newError(ErrForbidden, "The user doesn't have enough privileges")
	ErrLoginBadCredentials = newError(ErrInvalidInput, "LOGIN_BAD_CREDENTIALS")

	ErrUserAlreadyExists  = newError(ErrConflict, "REGISTER_USER_ALREADY_EXISTS")
	ErrEmailAlreadyExists = newError(ErrConflict, "UPDATE_USER_EMAIL_ALREADY_EXISTS")
	ErrUserNotFound       = newError(ErrNotFound, "User not found")
	ErrSelfDeletion       = newError(ErrConflict, "Cannot delete your own account")
	ErrSelfUpdate         = newError(ErrForbidden, "PATCH /users/me is not allowed. Use PATCH /users/me/password to change your password.")

	ErrInvalidEmail         = newError(ErrValidation, "value is not a valid email address")
	ErrInvalidPagination    = newError(ErrValidation, "limit must be between 1 and 500 and offset must be >= 0")
	ErrWrongCurrentPassword = newError(ErrForbidden, "Current password is incorrect")
	ErrResetTokenInvalid    = newError(ErrInvalidInput, "RESET_PASSWORD_BAD_TOKEN")

	ErrInsufficientCredits = newError(ErrForbidden, "Insufficient credits. Please contact support to top up.")
	ErrInvalidAmount       = newError(ErrValidation, "credits must be greater than or equal to 0")
	ErrInvalidDebit        = newError(ErrValidation, "amount must be positive")
	ErrOperandOutOfRange   = newError(ErrValidation, "a and b must be integers between 0 and 1023")
)
