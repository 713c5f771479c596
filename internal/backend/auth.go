package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// ErrNoCredential is returned when an auth call succeeded but the response
// carried no recognisable access token.
var ErrNoCredential = errors.New("no access token in backend response")

// tokenFields lists where backends put the issued credential, in priority order.
var tokenFields = []string{"accessToken", "access_token", "token"}

// Registration is the body of POST /users.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register creates a user account. It does not log the user in.
func (c *Client) Register(ctx context.Context, r Registration) error {
	_, err := c.do(ctx, "users.register", http.MethodPost, "/users", nil, "", r)
	return err
}

// Login exchanges email and password for a user credential.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.do(ctx, "users.auth", http.MethodPost, "/users/auth", nil, "", body)
	if err != nil {
		return "", err
	}
	return extractToken(raw)
}

// RequestMagicLink asks the backend to email an admin sign-in link.
func (c *Client) RequestMagicLink(ctx context.Context, email string) error {
	_, err := c.do(ctx, "admin.auth", http.MethodPost, "/admin/auth", nil, "", map[string]string{"email": email})
	return err
}

// VerifyMagicLink exchanges a magic-link token for an admin credential.
func (c *Client) VerifyMagicLink(ctx context.Context, token string) (string, error) {
	q := url.Values{"token": {token}}
	raw, err := c.do(ctx, "admin.verify", http.MethodGet, "/admin/auth/verify", q, "", nil)
	if err != nil {
		return "", err
	}
	return extractToken(raw)
}

// extractToken finds the credential at the top level of the response or
// inside its data envelopes.
func extractToken(raw []byte) (string, error) {
	for _, field := range tokenFields {
		obj, err := locate(raw, field)
		if err != nil {
			return "", err
		}
		if obj == nil {
			continue
		}
		var tok string
		if json.Unmarshal(obj[field], &tok) == nil && tok != "" {
			return tok, nil
		}
	}
	return "", ErrNoCredential
}
