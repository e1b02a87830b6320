package crypto

import (
	"crypto/aes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// FixedPasswordIV is the hard-coded IV the client has always used for
// passwords. Equal passwords therefore produce equal ciphertexts, and
// passwords sharing a 16-byte prefix share the first ciphertext block.
// Stored bcrypt digests are computed over this ciphertext, so changing the IV
// would lock every existing account out.
//
// TODO: replace with a per-account salt once a password-reset flow exists to
// migrate stored digests.
var FixedPasswordIV = [aes.BlockSize]byte{
	0x12, 0x34, 0x56, 0x78, 0x90, 0xab, 0xcd, 0xef,
	0x12, 0x34, 0x56, 0x78, 0x90, 0xab, 0xcd, 0xef,
}

// PasswordCipher deterministically encrypts passwords on the client with
// AES-256-CBC under FixedPasswordIV. Output is base64 of the raw ciphertext.
type PasswordCipher struct {
	key []byte
}

// NewPasswordCipher derives the AES key from the client passphrase. A
// 64-character hex passphrase is used as the raw 256-bit key; anything else
// is hashed with SHA-256. The browser client fed the hex string to CryptoJS
// as UTF-8 (a 512-bit key), so its ciphertexts are not reproduced here and
// digests enrolled through it must be re-enrolled.
func NewPasswordCipher(passphrase string) (*PasswordCipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("password cipher: %w: empty passphrase", ErrInvalidKeyLength)
	}
	key, err := hex.DecodeString(passphrase)
	if err != nil || len(key) != 32 {
		sum := sha256.Sum256([]byte(passphrase))
		key = sum[:]
	}
	return &PasswordCipher{key: key}, nil
}

func (c *PasswordCipher) Encrypt(password string) (string, error) {
	ct, err := cbcEncrypt(c.key, FixedPasswordIV[:], []byte(password))
	if err != nil {
		return "", fmt.Errorf("password cipher: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt exists for diagnostics and tests; the server never needs it.
func (c *PasswordCipher) Decrypt(s string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", decryptErr(TierPassword, "bad base64", err)
	}
	pt, err := cbcDecrypt(c.key, FixedPasswordIV[:], ct)
	if err != nil {
		return "", decryptErr(TierPassword, "cbc", err)
	}
	return string(pt), nil
}

// IsPasswordCiphertext reports whether s has the shape PasswordCipher emits.
func IsPasswordCiphertext(s string) bool {
	raw, err := base64.StdEncoding.DecodeString(s)
	return err == nil && len(raw) >= aes.BlockSize && len(raw)%aes.BlockSize == 0
}
