package crypto

import (
	"crypto/aes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	serverKeySize = 32
	macSize       = sha256.Size
	sep           = ":"
)

// ServerCipher is the server tier: AES-256-CBC under a static key with a
// fresh IV per call. Envelopes are "iv_hex:ciphertext_hex:tag_hex", where the
// tag is an HMAC-SHA256 over IV and ciphertext under a key derived from the
// server key. Safe for concurrent use.
type ServerCipher struct {
	key          []byte
	macKey       []byte
	acceptLegacy bool
}

// ServerOption configures a ServerCipher.
type ServerOption func(*ServerCipher)

// AcceptLegacyEnvelopes lets Open read the untagged "iv_hex:ciphertext_hex"
// form. Such envelopes get padding and UTF-8 checks only, so tampering is not
// reliably detected.
func AcceptLegacyEnvelopes(accept bool) ServerOption {
	return func(c *ServerCipher) { c.acceptLegacy = accept }
}

func NewServerCipher(key []byte, opts ...ServerOption) (*ServerCipher, error) {
	if len(key) != serverKeySize {
		return nil, fmt.Errorf("server cipher: %w: want %d bytes, got %d", ErrInvalidKeyLength, serverKeySize, len(key))
	}
	macKey := make([]byte, 32)
	r := hkdf.New(sha256.New, key, []byte("studentvault-server-tier"), []byte("envelope-mac"))
	if _, err := io.ReadFull(r, macKey); err != nil {
		return nil, fmt.Errorf("server cipher: deriving mac key: %w", err)
	}
	c := &ServerCipher{
		key:    append([]byte(nil), key...),
		macKey: macKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *ServerCipher) tag(iv, ct []byte) []byte {
	m := hmac.New(sha256.New, c.macKey)
	m.Write(iv)
	m.Write(ct)
	return m.Sum(nil)
}

// Seal wraps a client envelope in the server layer.
func (c *ServerCipher) Seal(in ClientCiphertext) (ServerCiphertext, error) {
	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("server cipher: generating iv: %w", err)
	}
	ct, err := cbcEncrypt(c.key, iv, []byte(in))
	if err != nil {
		return "", fmt.Errorf("server cipher: %w", err)
	}
	return ServerCiphertext(strings.Join([]string{
		hex.EncodeToString(iv),
		hex.EncodeToString(ct),
		hex.EncodeToString(c.tag(iv, ct)),
	}, sep)), nil
}

// Open removes the server layer and returns the client envelope underneath.
func (c *ServerCipher) Open(in ServerCiphertext) (ClientCiphertext, error) {
	parts := strings.Split(string(in), sep)
	switch len(parts) {
	case 3:
	case 2:
		if !c.acceptLegacy {
			return "", decryptErr(TierServer, "untagged envelope", nil)
		}
	default:
		return "", decryptErr(TierServer, "malformed envelope", nil)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", decryptErr(TierServer, "bad iv", err)
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", decryptErr(TierServer, "bad ciphertext encoding", err)
	}

	if len(parts) == 3 {
		tag, err := hex.DecodeString(parts[2])
		if err != nil || len(tag) != macSize {
			return "", decryptErr(TierServer, "bad tag", err)
		}
		if !hmac.Equal(tag, c.tag(iv, ct)) {
			return "", decryptErr(TierServer, "integrity check failed", nil)
		}
	}

	pt, err := cbcDecrypt(c.key, iv, ct)
	if err != nil {
		return "", decryptErr(TierServer, "cbc", err)
	}
	return ClientCiphertext(pt), nil
}
