package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errBadState = errors.New("invalid oauth state")

func signState(key []byte, msg string) string {
	m := hmac.New(sha256.New, key)
	m.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

// GenerateState builds an OAuth state of the form random.payload.mac, so the
// callback can tell its own states from forged ones.
func GenerateState(key []byte, data map[string]string) (string, error) {
	// Generate 16 random bytes for uniqueness
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	randomPart := base64.RawURLEncoding.EncodeToString(randomBytes)

	payloadBytes, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state data: %w", err)
	}
	msg := randomPart + "." + base64.RawURLEncoding.EncodeToString(payloadBytes)

	return msg + "." + signState(key, msg), nil
}

// DecodeState checks the MAC and returns the metadata.
func DecodeState(key []byte, state string) (map[string]string, error) {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return nil, errBadState
	}
	msg := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(signState(key, msg))) {
		return nil, errBadState
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode state payload: %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(payloadBytes, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state JSON: %w", err)
	}

	return data, nil
}
