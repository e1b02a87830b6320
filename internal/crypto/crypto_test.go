package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClientKey = "b144cb13304a3745accaa0962d2a4fdd43e29d64cfb387132fe94b8209c1c691"
	testServerKey = "ca104c7782e85891827c2622a2e80c1fed4b40d3de2737b6db275980263c3ff4"
)

var samples = []string{
	"",
	"a",
	"Jane Doe",
	"+1 (555) 010-2030",
	"1999-04-01",
	"221B Baker Street, London NW1 6XE",
	"Computer Science — Año 2",
	strings.Repeat("exactly sixteen!", 4),
}

func newServer(t *testing.T, hexKey string, opts ...ServerOption) *ServerCipher {
	t.Helper()
	key, err := hex.DecodeString(hexKey)
	require.NoError(t, err)
	c, err := NewServerCipher(key, opts...)
	require.NoError(t, err)
	return c
}

func newClient(t *testing.T, pass string) *ClientCipher {
	t.Helper()
	c, err := NewClientCipher(pass)
	require.NoError(t, err)
	return c
}

func TestServerRoundTrip(t *testing.T) {
	c := newServer(t, testServerKey)
	for _, p := range samples {
		env, err := c.Seal(ClientCiphertext(p))
		require.NoError(t, err)
		assert.Len(t, strings.Split(string(env), ":"), 3)
		got, err := c.Open(env)
		require.NoError(t, err)
		assert.Equal(t, ClientCiphertext(p), got)
	}
}

func TestServerFreshIVPerCall(t *testing.T) {
	c := newServer(t, testServerKey)
	a, err := c.Seal("same")
	require.NoError(t, err)
	b, err := c.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestServerDetectsTampering(t *testing.T) {
	c := newServer(t, testServerKey)
	env, err := c.Seal(ClientCiphertext(strings.Repeat("student record ", 5)))
	require.NoError(t, err)
	parts := strings.Split(string(env), ":")
	ct, err := hex.DecodeString(parts[1])
	require.NoError(t, err)

	for i := range ct {
		flipped := append([]byte(nil), ct...)
		flipped[i] ^= 0x01
		tampered := ServerCiphertext(parts[0] + ":" + hex.EncodeToString(flipped) + ":" + parts[2])
		_, err := c.Open(tampered)
		require.ErrorIs(t, err, ErrDecryption, "byte %d", i)
	}
}

func TestServerRejectsWrongKey(t *testing.T) {
	a := newServer(t, testServerKey)
	b := newServer(t, strings.Repeat("ab", 32))
	env, err := a.Seal("hello")
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		_, err = b.Open(env)
		require.ErrorIs(t, err, ErrDecryption)
	}
	var de *DecryptionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, TierServer, de.Tier)
}

func TestServerRejectsMalformed(t *testing.T) {
	c := newServer(t, testServerKey)
	env, err := c.Seal("hello")
	require.NoError(t, err)
	for _, in := range []string{
		"",
		"nocolon",
		"a:b:c:d",
		"zz:00:00",
		string(env[:len(env)-4]),
		strings.Replace(string(env), ":", "", 1),
	} {
		_, err := c.Open(ServerCiphertext(in))
		assert.ErrorIs(t, err, ErrDecryption, "input %q", in)
	}
}

func TestServerLegacyEnvelopes(t *testing.T) {
	key, err := hex.DecodeString(testServerKey)
	require.NoError(t, err)
	iv := make([]byte, 16)
	ct, err := cbcEncrypt(key, iv, []byte("legacy"))
	require.NoError(t, err)
	legacy := ServerCiphertext(hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct))

	strict := newServer(t, testServerKey)
	_, err = strict.Open(legacy)
	assert.ErrorIs(t, err, ErrDecryption)

	lenient := newServer(t, testServerKey, AcceptLegacyEnvelopes(true))
	got, err := lenient.Open(legacy)
	require.NoError(t, err)
	assert.Equal(t, ClientCiphertext("legacy"), got)
}

func TestNewServerCipherKeyLength(t *testing.T) {
	_, err := NewServerCipher(make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestClientRoundTrip(t *testing.T) {
	c := newClient(t, testClientKey)
	for _, p := range samples {
		env, err := c.Seal(p)
		require.NoError(t, err)
		assert.True(t, IsClientEnvelope(string(env)))
		got, err := c.Open(env)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestClientOpensOpenSSLEnvelope(t *testing.T) {
	// openssl enc -aes-256-cbc -md md5 -S 0102030405060708 -pass pass:<testClientKey>
	c := newClient(t, testClientKey)
	got, err := c.Open("U2FsdGVkX18BAgMEBQYHCCIUUZjlbteEqMJCNlhktB4=")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got)
}

func TestClientRejectsWrongKeyAndGarbage(t *testing.T) {
	c := newClient(t, testClientKey)
	env, err := c.Seal("Jane Doe")
	require.NoError(t, err)

	_, err = newClient(t, "another passphrase entirely").Open(env)
	assert.ErrorIs(t, err, ErrDecryption)

	for _, in := range []string{"", "not base64!", "U2FsdGVkX18=", base64.StdEncoding.EncodeToString([]byte("NotSalt_12345678abcdefghabcdefgh"))} {
		_, err := c.Open(ClientCiphertext(in))
		assert.ErrorIs(t, err, ErrDecryption, "input %q", in)
	}
}

func TestIsClientEnvelope(t *testing.T) {
	assert.False(t, IsClientEnvelope("Jane Doe"))
	assert.False(t, IsClientEnvelope("U2FsdGVkX1"))
	assert.True(t, IsClientEnvelope("U2FsdGVkX18BAgMEBQYHCCIUUZjlbteEqMJCNlhktB4="))
}

func TestPasswordCipherKnownAnswer(t *testing.T) {
	// openssl enc -aes-256-cbc -K <testClientKey> -iv 1234567890abcdef1234567890abcdef
	c, err := NewPasswordCipher(testClientKey)
	require.NoError(t, err)
	got, err := c.Encrypt("Sup3rSecret!")
	require.NoError(t, err)
	assert.Equal(t, "uWAMsACYMgtNrZ9QxDDnKQ==", got)
	assert.True(t, IsPasswordCiphertext(got))

	back, err := c.Decrypt(got)
	require.NoError(t, err)
	assert.Equal(t, "Sup3rSecret!", back)
}

func TestPasswordCipherIsDeterministic(t *testing.T) {
	c, err := NewPasswordCipher(testClientKey)
	require.NoError(t, err)

	a, err := c.Encrypt("hunter2")
	require.NoError(t, err)
	b, err := c.Encrypt("hunter2")
	require.NoError(t, err)
	assert.Equal(t, a, b, "fixed IV makes equal passwords collide")

	other, err := c.Encrypt("hunter3")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestPasswordCipherSharedPrefixLeaks(t *testing.T) {
	c, err := NewPasswordCipher(testClientKey)
	require.NoError(t, err)

	a, err := c.Encrypt("correct horse ba" + "ttery")
	require.NoError(t, err)
	b, err := c.Encrypt("correct horse ba" + "ggage")
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	rawA, _ := base64.StdEncoding.DecodeString(a)
	rawB, _ := base64.StdEncoding.DecodeString(b)
	assert.Equal(t, rawA[:16], rawB[:16], "first block depends only on the shared 16-byte prefix")
	assert.NotEqual(t, rawA[16:], rawB[16:])
}

func TestPasswordCipherNonHexPassphrase(t *testing.T) {
	c, err := NewPasswordCipher("not hex at all")
	require.NoError(t, err)
	ct, err := c.Encrypt("pw")
	require.NoError(t, err)
	pt, err := c.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "pw", pt)
}

func TestPipeline(t *testing.T) {
	p := Pipeline{Client: newClient(t, testClientKey), Server: newServer(t, testServerKey)}
	for _, s := range samples {
		env, err := p.Seal(s)
		require.NoError(t, err)
		got, err := p.Open(env)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	env, err := p.Seal("Jane Doe")
	require.NoError(t, err)
	swapped := Pipeline{Client: newClient(t, "wrong passphrase"), Server: p.Server}
	_, err = swapped.Open(env)
	assert.ErrorIs(t, err, ErrDecryption)
	assert.Contains(t, err.Error(), "client stage")
}
