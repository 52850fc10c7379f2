package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("too many requests")
	ErrSessionExpired     = errors.New("session expired or invalid")
	ErrSessionRevoked     = errors.New("session has been revoked")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginUnavailable   = errors.New("login service unavailable")
	ErrNotConfigured      = errors.New("external api not configured")
	ErrUnavailable        = errors.New("feature requires the external api")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
