package auth

import "errors"

var (
	// ErrDuplicateUser carries the exact text shown to whoever picked a taken
	// username or email.
	ErrDuplicateUser      = errors.New("Username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be employee or manager")
	ErrInvalidInput       = errors.New("invalid user details")
	ErrMFARequired        = errors.New("mfa code required")
	ErrMFAInvalid         = errors.New("invalid mfa code")
	ErrMFAUnavailable     = errors.New("mfa requires encryption key")
	ErrMFANotSetup        = errors.New("mfa setup required")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
)
