package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Storage errors
	ErrKeyNotFound = errors.New("key not found")

	// Session errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrGuestLoginFailed     = errors.New("guest login failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrSuperseded           = errors.New("superseded by a newer request")

	// Stamp errors
	ErrNoPendingReward = errors.New("no reward is waiting to be claimed")
	ErrInvalidRegistry = errors.New("invalid stamp registry")
)

// AuthError is a failed login or guest login. Kind is ErrAuthenticationFailed
// or ErrGuestLoginFailed and Reason is safe to show to the user.
type AuthError struct {
	Kind   error
	Reason string
	Err    error // underlying cause, may be nil
}

// NewAuthError builds an AuthError with the reason taken from cause
func NewAuthError(kind, cause error) *AuthError {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	return &AuthError{Kind: kind, Reason: reason, Err: cause}
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches the error kind so callers can use errors.Is(err, ErrAuthenticationFailed)
func (e *AuthError) Is(target error) bool {
	return target == e.Kind
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
