// Package crypto implements the two field-encryption tiers used for student
// PII, and the fixed-IV password cipher the client applies before a password
// leaves the user's machine.
package crypto

import (
	"errors"
	"fmt"
)

// ErrDecryption is the sentinel every decryption failure unwraps to.
var ErrDecryption = errors.New("decryption failed")

// ErrInvalidKeyLength is returned when a tier is constructed with the wrong key size.
var ErrInvalidKeyLength = errors.New("invalid key length")

// Tier names which layer rejected an envelope.
type Tier string

const (
	TierClient   Tier = "client"
	TierServer   Tier = "server"
	TierPassword Tier = "password"
)

// DecryptionError reports a malformed envelope, a wrong key, or a failed
// integrity check. It never carries key material or plaintext.
type DecryptionError struct {
	Tier   Tier
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s tier: %s: %s: %v", e.Tier, ErrDecryption, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s tier: %s: %s", e.Tier, ErrDecryption, e.Reason)
}

func (e *DecryptionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecryption, e.Err}
	}
	return []error{ErrDecryption}
}

func decryptErr(tier Tier, reason string, err error) error {
	return &DecryptionError{Tier: tier, Reason: reason, Err: err}
}
