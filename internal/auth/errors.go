package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialMismatch is returned when a password does not match its digest.
	ErrCredentialMismatch = errors.New("credential mismatch")
	// ErrUnauthenticated is what every AuthError unwraps to.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrTokenExpired is returned for a well-signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers bad signatures, wrong algorithms and malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthError rejects a request at the access guard or the refresh endpoint.
type AuthError struct {
	Err   error
	Cause error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrUnauthenticated, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrUnauthenticated, e.Err)
}

func (e *AuthError) Unwrap() []error {
	errs := []error{ErrUnauthenticated, e.Err}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
