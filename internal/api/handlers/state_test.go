package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	state, err := GenerateState(key, map[string]string{"flow": "login"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(state, "."), 3)

	data, err := DecodeState(key, state)
	require.NoError(t, err)
	assert.Equal(t, "login", data["flow"])

	other, err := GenerateState(key, map[string]string{"flow": "login"})
	require.NoError(t, err)
	assert.NotEqual(t, state, other)
}

func TestStateRejectsForgery(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	state, err := GenerateState(key, map[string]string{"flow": "login"})
	require.NoError(t, err)

	_, err = DecodeState([]byte(strings.Repeat("x", 32)), state)
	assert.ErrorIs(t, err, errBadState)

	parts := strings.Split(state, ".")
	parts[1] = "eyJmbG93IjoiYWRtaW4ifQ"
	_, err = DecodeState(key, strings.Join(parts, "."))
	assert.ErrorIs(t, err, errBadState)

	for _, s := range []string{"", "a.b", "a.b.c.d"} {
		_, err = DecodeState(key, s)
		assert.ErrorIs(t, err, errBadState, s)
	}
}
