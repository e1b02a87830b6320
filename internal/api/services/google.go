package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rohits-web03/studentvault/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrEmailNotVerified = errors.New("google account email is not verified")

// GoogleAuth signs registered students in with their Google account. It only
// resolves an email address; account lookup is up to StudentService.
type GoogleAuth struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleAuth(cfg config.GoogleConfig) *GoogleAuth {
	return &GoogleAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// WithEndpoints points the provider somewhere else, for tests.
func (g *GoogleAuth) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) *GoogleAuth {
	c := *g.oauth
	c.Endpoint = endpoint
	return &GoogleAuth{oauth: &c, userInfoURL: userInfoURL}
}

func (g *GoogleAuth) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Email exchanges an authorization code and returns the account's verified email.
func (g *GoogleAuth) Email(ctx context.Context, code string) (string, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}

	resp, err := g.oauth.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return "", fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get user info: status %d", resp.StatusCode)
	}

	var user struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("parse user info: %w", err)
	}
	if !user.VerifiedEmail || user.Email == "" {
		return "", ErrEmailNotVerified
	}
	return user.Email, nil
}
