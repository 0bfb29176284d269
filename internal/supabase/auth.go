// Package supabase wraps the Supabase GoTrue auth endpoints used by the
// storefront: email/password sign-up and sign-in, sign-out, and local access
// token verification.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// ErrInvalidCredentials covers every auth rejection from the remote: bad
// password, unknown user, or an expired refresh. Callers surface it as a
// sign-in failure without detail.
var ErrInvalidCredentials = errors.New("supabase: invalid credentials")

type Config struct {
	// URL is the project base, e.g. https://xyzcompany.supabase.co.
	URL string
	// AnonKey is the public API key sent with every request.
	AnonKey string
	// JWTSecret verifies access tokens locally. See Verifier.
	JWTSecret string

	HTTPClient *http.Client
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token pair returned by sign-up and sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Client calls the GoTrue REST API of one Supabase project.
type Client struct {
	http    *http.Client
	baseURL string
	anonKey string
}

func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		http:    cfg.HTTPClient,
		baseURL: cfg.URL,
		anonKey: cfg.AnonKey,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new user. Supabase projects with email confirmation
// enabled return a session without tokens until the address is confirmed.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.token(ctx, "/auth/v1/signup", credentials{Email: email, Password: password})
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.token(ctx, "/auth/v1/token?grant_type=password", credentials{Email: email, Password: password})
}

// SignOut revokes the session behind the access token. A failed revocation is
// reported but the caller should still drop the token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "sign out")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("supabase: sign out status %d", resp.StatusCode)
	}
	return nil
}

// UserInfo fetches the user behind an access token from the remote. Most
// callers should prefer Verifier, which does not leave the process.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch user")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("supabase: user status %d", resp.StatusCode)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	return &u, nil
}

func (c *Client) token(ctx context.Context, path string, creds credentials) (*Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "encode credentials")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "auth request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("supabase: auth status %d", resp.StatusCode)
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &s, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("apikey", c.anonKey)
	return req, nil
}
