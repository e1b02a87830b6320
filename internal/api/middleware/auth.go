package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rohits-web03/studentvault/internal/auth"
	"github.com/rohits-web03/studentvault/internal/utils"
)

type contextKey string

const identityKey contextKey = "identity"

// AccessVerifier checks an access token and says who it belongs to.
type AccessVerifier interface {
	VerifyAccessToken(token string) (auth.Identity, error)
}

// IdentityFrom returns the identity RequireAccessToken attached, if any.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// BearerToken pulls the token out of "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAccessToken lets a request through only with a valid access token.
// On any failure it answers 401 and next is not called.
func RequireAccessToken(v AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			id, err := v.VerifyAccessToken(BearerToken(r))
			if err != nil {
				msg := "Unauthorized"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "Token expired"
				}
				utils.ErrorResponse(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
