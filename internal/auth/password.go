package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the cost the original accounts were hashed with.
const DefaultCost = 10

// bcrypt only ever looks at the first 72 bytes. Older bindings truncated
// silently; x/crypto refuses longer input, so we truncate ourselves to keep
// existing digests verifiable.
const maxSecretLen = 72

// PasswordHasher hashes the client-tier password ciphertext. The server never
// sees a raw password.
type PasswordHasher struct {
	Cost int
}

func NewPasswordHasher() PasswordHasher {
	return PasswordHasher{Cost: DefaultCost}
}

func clamp(secret string) []byte {
	b := []byte(secret)
	if len(b) > maxSecretLen {
		b = b[:maxSecretLen]
	}
	return b
}

// Hash returns a salted bcrypt digest. Two calls on the same secret differ.
func (h PasswordHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword(clamp(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify returns nil when secret matches digest and ErrCredentialMismatch
// when it does not. A corrupt digest is reported as a plain error.
func (h PasswordHasher) Verify(secret, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), clamp(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrCredentialMismatch
	default:
		return fmt.Errorf("verify password: %w", err)
	}
}
