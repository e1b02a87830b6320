package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rohits-web03/studentvault/internal/auth"
	"github.com/rohits-web03/studentvault/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuer(t *testing.T, access string, opts ...auth.IssuerOption) *auth.TokenIssuer {
	t.Helper()
	i, err := auth.NewTokenIssuer([]byte(access), []byte(strings.Repeat("r", 32)), opts...)
	require.NoError(t, err)
	return i
}

type guarded struct {
	calls int
	id    auth.Identity
}

func (g *guarded) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.calls++
	g.id, _ = IdentityFrom(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func serve(h http.Handler, method, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/students", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var p utils.Payload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.False(t, p.Success)
	return p.Message
}

func TestRequireAccessTokenAccepts(t *testing.T) {
	secret := strings.Repeat("a", 32)
	i := issuer(t, secret)
	tok, err := i.IssueAccessToken(auth.Identity{ID: "s1", Email: "s1@example.com"})
	require.NoError(t, err)

	next := &guarded{}
	rec := serve(RequireAccessToken(i)(next), http.MethodGet, "Bearer "+tok)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, auth.Identity{ID: "s1", Email: "s1@example.com"}, next.id)

	rec = serve(RequireAccessToken(i)(next), http.MethodGet, "bearer "+tok)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAccessTokenRejects(t *testing.T) {
	secret := strings.Repeat("a", 32)
	i := issuer(t, secret)

	expired, err := issuer(t, secret, auth.WithClock(func() time.Time {
		return time.Now().Add(-25 * time.Hour)
	})).IssueAccessToken(auth.Identity{ID: "s1"})
	require.NoError(t, err)
	forged, err := issuer(t, strings.Repeat("z", 32)).IssueAccessToken(auth.Identity{ID: "s1"})
	require.NoError(t, err)
	refresh, err := i.IssueRefreshToken(auth.Identity{ID: "s1"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		authz string
		want  string
	}{
		{"no header", "", "Unauthorized"},
		{"wrong scheme", "Basic abc", "Unauthorized"},
		{"garbage", "Bearer abc.def.ghi", "Unauthorized"},
		{"expired", "Bearer " + expired, "Token expired"},
		{"wrong secret", "Bearer " + forged, "Unauthorized"},
		{"refresh token", "Bearer " + refresh, "Unauthorized"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			next := &guarded{}
			rec := serve(RequireAccessToken(i)(next), http.MethodGet, test.authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, test.want, message(t, rec))
			assert.Zero(t, next.calls, "wrapped handler must not run")
		})
	}
}

func TestRequireAccessTokenPassesPreflight(t *testing.T) {
	next := &guarded{}
	rec := serve(RequireAccessToken(issuer(t, strings.Repeat("a", 32)))(next), http.MethodOptions, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := IdentityFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestLoggerRecordsStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
