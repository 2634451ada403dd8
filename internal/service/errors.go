package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("user already exists with this email")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account has been deactivated")
	ErrMissingToken       = errors.New("not authorized, no token")
	ErrInvalidToken       = errors.New("not authorized, invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found or already logged out")
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
)

// KindOf classifies err for the transport layer. Anything unrecognised is internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateUsername):
		return KindValidation
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountDeactivated),
		errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken):
		return KindAuthentication
	case errors.Is(err, ErrForbidden):
		return KindAuthorization
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrSessionNotFound):
		return KindNotFound
	}
	return KindInternal
}
