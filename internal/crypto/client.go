package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	saltSize      = 8
	clientKeySize = 32
)

var saltedHeader = []byte("Salted__")

// ClientCipher is the client tier. It takes a passphrase and produces the
// self-describing OpenSSL envelope CryptoJS emits for AES.encrypt(text, pass):
// base64("Salted__" || salt || AES-256-CBC(text)), with key and IV derived
// from passphrase and salt by EVP_BytesToKey (MD5, one round).
type ClientCipher struct {
	passphrase []byte
}

func NewClientCipher(passphrase string) (*ClientCipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("client cipher: %w: empty passphrase", ErrInvalidKeyLength)
	}
	return &ClientCipher{passphrase: []byte(passphrase)}, nil
}

func (c *ClientCipher) Seal(plaintext string) (ClientCiphertext, error) {
	salt, err := randomBytes(saltSize)
	if err != nil {
		return "", fmt.Errorf("client cipher: generating salt: %w", err)
	}
	key, iv := evpBytesToKey(c.passphrase, salt)
	ct, err := cbcEncrypt(key, iv, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("client cipher: %w", err)
	}
	buf := make([]byte, 0, len(saltedHeader)+saltSize+len(ct))
	buf = append(buf, saltedHeader...)
	buf = append(buf, salt...)
	buf = append(buf, ct...)
	return ClientCiphertext(base64.StdEncoding.EncodeToString(buf)), nil
}

func (c *ClientCipher) Open(in ClientCiphertext) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(string(in))
	if err != nil {
		return "", decryptErr(TierClient, "bad base64", err)
	}
	if len(raw) < len(saltedHeader)+saltSize+aes.BlockSize || !bytes.HasPrefix(raw, saltedHeader) {
		return "", decryptErr(TierClient, "malformed envelope", nil)
	}
	salt := raw[len(saltedHeader) : len(saltedHeader)+saltSize]
	key, iv := evpBytesToKey(c.passphrase, salt)
	pt, err := cbcDecrypt(key, iv, raw[len(saltedHeader)+saltSize:])
	if err != nil {
		return "", decryptErr(TierClient, "cbc", err)
	}
	return string(pt), nil
}

// IsClientEnvelope reports whether s is shaped like a client-tier envelope.
// It does not prove s decrypts, only that a server never mistakes plaintext
// for one.
func IsClientEnvelope(s string) bool {
	if !strings.HasPrefix(s, "U2FsdGVkX1") {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	body := len(raw) - len(saltedHeader) - saltSize
	return body >= aes.BlockSize && body%aes.BlockSize == 0
}

// evpBytesToKey is OpenSSL's legacy key derivation with MD5 and a single
// iteration, producing a 32-byte key followed by a 16-byte IV.
func evpBytesToKey(pass, salt []byte) (key, iv []byte) {
	var out, prev []byte
	for len(out) < clientKeySize+aes.BlockSize {
		h := md5.New()
		h.Write(prev)
		h.Write(pass)
		h.Write(salt)
		prev = h.Sum(nil)
		out = append(out, prev...)
	}
	return out[:clientKeySize], out[clientKeySize : clientKeySize+aes.BlockSize]
}
