package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Credential check failures
	// ErrPasswordHash is an internal error: the stored hash can't be used at all
	ErrBadPassword  = errors.New("password does not match")
	ErrPasswordHash = errors.New("stored password hash is malformed")

	// Access token failures
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
)

// Whether the error is one of the access token failures
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenSignature) ||
		errors.Is(err, ErrTokenExpired)
}

// Whether the error means "wrong username or password" for the caller
func IsCredentialsError(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrBadPassword)
}

// Request parameter out of allowed range
// Message is safe to show to the client
type InvalidParamError struct {
	Message string
}

func (e *InvalidParamError) Error() string {
	return e.Message
}

func NewInvalidParam(message string) error {
	return &InvalidParamError{Message: message}
}
