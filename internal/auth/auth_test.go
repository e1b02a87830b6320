package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte(strings.Repeat("a", 32))
	refreshSecret = []byte(strings.Repeat("r", 32))
)

// Tests use bcrypt's minimum cost to keep them fast.
var hasher = PasswordHasher{Cost: 4}

func TestHashIsSaltedAndOpaque(t *testing.T) {
	const secret = "uWAMsACYMgtNrZ9QxDDnKQ=="
	a, err := hasher.Hash(secret)
	require.NoError(t, err)
	b, err := hasher.Hash(secret)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, secret)
	assert.NotContains(t, b, secret)
}

func TestVerify(t *testing.T) {
	digest, err := hasher.Hash("secret-one")
	require.NoError(t, err)

	assert.NoError(t, hasher.Verify("secret-one", digest))
	assert.ErrorIs(t, hasher.Verify("secret-two", digest), ErrCredentialMismatch)

	other, err := hasher.Hash("secret-two")
	require.NoError(t, err)
	assert.ErrorIs(t, hasher.Verify("secret-one", other), ErrCredentialMismatch)
}

func TestVerifyCorruptDigest(t *testing.T) {
	err := hasher.Verify("secret", "not a bcrypt digest")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialMismatch)
}

func TestHashLongSecretTruncatesLikeBcrypt(t *testing.T) {
	long := strings.Repeat("x", 72)
	digest, err := hasher.Hash(long + "tail-one")
	require.NoError(t, err)
	assert.NoError(t, hasher.Verify(long+"tail-two", digest))
}

func TestDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewPasswordHasher().Cost)
}

func newIssuer(t *testing.T, opts ...IssuerOption) *TokenIssuer {
	t.Helper()
	i, err := NewTokenIssuer(accessSecret, refreshSecret, opts...)
	require.NoError(t, err)
	return i
}

func TestAccessTokenRoundTrip(t *testing.T) {
	i := newIssuer(t)
	id := Identity{ID: "8b0c8d2e-1111-4c4c-9a9a-000000000001", Email: "jane@example.com"}
	tok, err := i.IssueAccessToken(id)
	require.NoError(t, err)

	got, err := i.VerifyAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenExpiries(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	i := newIssuer(t, WithClock(func() time.Time { return now }))
	pair, err := i.IssuePair(Identity{ID: "s1", Email: "s1@example.com"})
	require.NoError(t, err)

	var access, refresh Claims
	_, _, err = jwt.NewParser().ParseUnverified(pair.AccessToken, &access)
	require.NoError(t, err)
	_, _, err = jwt.NewParser().ParseUnverified(pair.RefreshToken, &refresh)
	require.NoError(t, err)

	assert.Equal(t, now.Add(24*time.Hour).Unix(), access.ExpiresAt.Unix())
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), refresh.ExpiresAt.Unix())
	assert.Equal(t, "s1@example.com", access.Email)
	assert.Empty(t, refresh.Email)
	assert.Equal(t, "s1", refresh.Subject)
}

func TestExpiredAccessToken(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	old := newIssuer(t, WithClock(func() time.Time { return past }))
	tok, err := old.IssueAccessToken(Identity{ID: "s1"})
	require.NoError(t, err)

	_, err = newIssuer(t).VerifyAccessToken(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	var ae *AuthError
	assert.ErrorAs(t, err, &ae)
}

func TestWrongSecretRejected(t *testing.T) {
	forged, err := NewTokenIssuer([]byte(strings.Repeat("z", 32)), refreshSecret)
	require.NoError(t, err)
	tok, err := forged.IssueAccessToken(Identity{ID: "s1"})
	require.NoError(t, err)

	_, err = newIssuer(t).VerifyAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	i := newIssuer(t)
	pair, err := i.IssuePair(Identity{ID: "s1", Email: "s1@example.com"})
	require.NoError(t, err)

	_, err = i.VerifyAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = i.VerifyRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	id, err := i.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "s1", id.ID)
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{StudentID: "s1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(accessSecret)
	require.NoError(t, err)
	_, err = newIssuer(t).VerifyAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newIssuer(t).VerifyAccessToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingAndMalformedTokens(t *testing.T) {
	i := newIssuer(t)
	_, err := i.VerifyAccessToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = i.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
