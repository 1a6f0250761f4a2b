package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUniqueness         = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// FieldError ties a user-facing message to the input field that caused it.
// errors.Is matches it against its Kind (ErrValidation, ErrUniqueness, ...).
type FieldError struct {
	Field   string
	Message string
	Kind    error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func fieldError(kind error, field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, Kind: kind}
}
