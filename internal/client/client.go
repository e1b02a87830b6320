// Package client is the client tier in Go: it encrypts profile fields and
// passwords before they leave the machine, talks to the API, and removes the
// client layer from what comes back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rohits-web03/studentvault/internal/auth"
	"github.com/rohits-web03/studentvault/internal/crypto"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Student is a profile with every field in plaintext.
type Student struct {
	ID             string `json:"_id,omitempty"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	DateOfBirth    string `json:"dateOfBirth"`
	Gender         string `json:"gender"`
	Address        string `json:"address"`
	CourseEnrolled string `json:"courseEnrolled"`
}

// Profile is what registration and updates send. On update, empty fields
// are left unchanged by the server.
type Profile struct {
	Student
	Password string
}

type ExportInfo struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Client struct {
	baseURL   string
	http      *http.Client
	fields    crypto.ClientTier
	passwords *crypto.PasswordCipher

	mu     sync.Mutex
	tokens auth.TokenPair
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL, passphrase string, opts ...Option) (*Client, error) {
	fields, err := crypto.NewClientCipher(passphrase)
	if err != nil {
		return nil, err
	}
	passwords, err := crypto.NewPasswordCipher(passphrase)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
		fields:    fields,
		passwords: passwords,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Tokens() auth.TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *Client) SetTokens(t auth.TokenPair) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

type payload struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Tokens().AccessToken; tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return fmt.Errorf("api: %s %s: decoding response: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !p.Success {
		return &APIError{Status: resp.StatusCode, Message: p.Message}
	}
	if out != nil && len(p.Data) > 0 {
		if err := json.Unmarshal(p.Data, out); err != nil {
			return fmt.Errorf("api: %s %s: decoding data: %w", method, path, err)
		}
	}
	return nil
}

// seal encrypts every non-empty field; empty ones stay empty so updates
// can leave them out.
func (c *Client) seal(p Profile) (map[string]string, error) {
	out := map[string]string{}
	for name, v := range map[string]string{
		"fullName":       p.FullName,
		"phoneNumber":    p.PhoneNumber,
		"dateOfBirth":    p.DateOfBirth,
		"gender":         p.Gender,
		"address":        p.Address,
		"courseEnrolled": p.CourseEnrolled,
	} {
		if v == "" {
			continue
		}
		ct, err := c.fields.Seal(v)
		if err != nil {
			return nil, err
		}
		out[name] = string(ct)
	}
	if p.Email != "" {
		out["email"] = p.Email
	}
	if p.Password != "" {
		ct, err := c.passwords.Encrypt(p.Password)
		if err != nil {
			return nil, err
		}
		out["password"] = ct
	}
	return out, nil
}

func (c *Client) open(s *Student) error {
	for _, f := range []*string{&s.FullName, &s.PhoneNumber, &s.DateOfBirth, &s.Gender, &s.Address, &s.CourseEnrolled} {
		if *f == "" {
			continue
		}
		pt, err := c.fields.Open(crypto.ClientCiphertext(*f))
		if err != nil {
			return fmt.Errorf("student %s: %w", s.ID, err)
		}
		*f = pt
	}
	return nil
}

// Register creates an account and returns its id.
func (c *Client) Register(ctx context.Context, p Profile) (string, error) {
	body, err := c.seal(p)
	if err != nil {
		return "", err
	}
	var out Student
	if err := c.do(ctx, http.MethodPost, "/api/register", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Login stores the returned tokens for later calls and returns the student's
// decrypted summary.
func (c *Client) Login(ctx context.Context, email, password string) (*Student, error) {
	pw, err := c.passwords.Encrypt(password)
	if err != nil {
		return nil, err
	}
	return c.session(ctx, "/api/login", map[string]string{"email": email, "password": pw})
}

// Refresh trades the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (*Student, error) {
	return c.session(ctx, "/api/auth/refresh", map[string]string{"refreshToken": c.Tokens().RefreshToken})
}

func (c *Client) session(ctx context.Context, path string, body any) (*Student, error) {
	var out struct {
		auth.TokenPair
		Student Student `json:"student"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	c.SetTokens(out.TokenPair)
	if err := c.open(&out.Student); err != nil {
		return nil, err
	}
	return &out.Student, nil
}

func (c *Client) List(ctx context.Context) ([]Student, error) {
	var out []Student
	if err := c.do(ctx, http.MethodGet, "/api/students", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := c.open(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Student, error) {
	var out Student
	if err := c.do(ctx, http.MethodGet, "/api/student/"+id, nil, &out); err != nil {
		return nil, err
	}
	if err := c.open(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, p Profile) error {
	body, err := c.seal(p)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, "/api/student/"+id, body, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/student/"+id, nil, nil)
}

func (c *Client) Export(ctx context.Context) (*ExportInfo, error) {
	var out ExportInfo
	if err := c.do(ctx, http.MethodPost, "/api/students/export", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
