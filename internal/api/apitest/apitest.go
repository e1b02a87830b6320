// Package apitest runs the full HTTP stack against a throwaway database.
package apitest

import (
	"encoding/hex"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rohits-web03/studentvault/internal/api"
	"github.com/rohits-web03/studentvault/internal/api/handlers"
	"github.com/rohits-web03/studentvault/internal/api/services"
	"github.com/rohits-web03/studentvault/internal/auth"
	"github.com/rohits-web03/studentvault/internal/config"
	"github.com/rohits-web03/studentvault/internal/crypto"
	"github.com/rohits-web03/studentvault/internal/repositories"
	"github.com/rohits-web03/studentvault/internal/repositories/repotest"
)

const (
	ClientKey = "b144cb13304a3745accaa0962d2a4fdd43e29d64cfb387132fe94b8209c1c691"
	ServerKey = "ca104c7782e85891827c2622a2e80c1fed4b40d3de2737b6db275980263c3ff4"
)

var (
	AccessSecret  = []byte(strings.Repeat("a", 32))
	RefreshSecret = []byte(strings.Repeat("r", 32))
)

// NewServer starts the router with real ciphers and a low bcrypt cost. The
// server is closed when t finishes.
func NewServer(t testing.TB, opts ...services.Option) *httptest.Server {
	t.Helper()
	key, err := hex.DecodeString(ServerKey)
	if err != nil {
		t.Fatal(err)
	}
	cipher, err := crypto.NewServerCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := auth.NewTokenIssuer(AccessSecret, RefreshSecret)
	if err != nil {
		t.Fatal(err)
	}

	svc := services.NewStudentService(
		repositories.NewStudentRepository(repotest.NewDB(t)),
		cipher,
		auth.PasswordHasher{Cost: 4},
		tokens,
		opts...,
	)
	h := handlers.New(svc, nil, config.GoogleConfig{}, []byte(strings.Repeat("s", 32)))
	srv := httptest.NewServer(api.SetupRouter(h, tokens, config.CorsConfig("http://localhost:5173")))
	t.Cleanup(srv.Close)
	return srv
}
