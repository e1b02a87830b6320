package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"unicode/utf8"
)

var (
	errBadPadding   = errors.New("bad padding")
	errNotAligned   = errors.New("ciphertext is not a multiple of the block size")
	errInvalidUTF8  = errors.New("plaintext is not valid UTF-8")
	errEmptyMessage = errors.New("empty ciphertext")
)

func pkcs7Pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize {
		return nil, errBadPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}

// cbcEncrypt pads and encrypts plaintext with AES-CBC. The caller owns IV choice.
func cbcEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(append([]byte(nil), plaintext...))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// cbcDecrypt decrypts, strips padding, and insists on UTF-8 output, since
// every field this package handles is text.
func cbcDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, errEmptyMessage
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errNotAligned
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	out, err = pkcs7Unpad(out)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(out) {
		return nil, errInvalidUTF8
	}
	return out, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
