package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	ID    string
	Email string
}

// Claims is the JWT body. Access tokens carry the email, refresh tokens do not.
type Claims struct {
	StudentID string `json:"id"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer signs and verifies both token kinds. Access and refresh tokens
// use different secrets, so one can never stand in for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

type IssuerOption func(*TokenIssuer)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

func NewTokenIssuer(accessSecret, refreshSecret []byte, opts ...IssuerOption) (*TokenIssuer, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("token issuer: empty secret")
	}
	i := &TokenIssuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *TokenIssuer) sign(claims Claims, ttl time.Duration, secret []byte) (string, error) {
	now := i.now()
	claims.Subject = claims.StudentID
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (i *TokenIssuer) IssueAccessToken(id Identity) (string, error) {
	return i.sign(Claims{StudentID: id.ID, Email: id.Email}, AccessTokenTTL, i.accessSecret)
}

func (i *TokenIssuer) IssueRefreshToken(id Identity) (string, error) {
	return i.sign(Claims{StudentID: id.ID}, RefreshTokenTTL, i.refreshSecret)
}

func (i *TokenIssuer) IssuePair(id Identity) (TokenPair, error) {
	access, err := i.IssueAccessToken(id)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.IssueRefreshToken(id)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *TokenIssuer) VerifyAccessToken(token string) (Identity, error) {
	return i.verify(token, i.accessSecret)
}

func (i *TokenIssuer) VerifyRefreshToken(token string) (Identity, error) {
	return i.verify(token, i.refreshSecret)
}

func (i *TokenIssuer) verify(token string, secret []byte) (Identity, error) {
	if token == "" {
		return Identity{}, &AuthError{Err: ErrMissingToken}
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, &AuthError{Err: ErrTokenExpired, Cause: err}
		}
		return Identity{}, &AuthError{Err: ErrInvalidToken, Cause: err}
	}
	if claims.StudentID == "" {
		return Identity{}, &AuthError{Err: ErrInvalidToken, Cause: errors.New("no subject")}
	}
	return Identity{ID: claims.StudentID, Email: claims.Email}, nil
}
