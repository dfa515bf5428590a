package upstream

import (
	"context"

	"hospital_training_portal/internal/model"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenGrant is the upstream's answer to login and refresh. The tokens
// themselves travel in HTTP-only cookies held by the client's jar;
// ExpiresIn (seconds) is what the session manager tracks locally.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login authenticates against auth/login. The server sets the access and
// refresh cookies on success; the jar keeps them for every later call.
// Auth endpoints bypass the 401-refresh-retry machinery.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenGrant, error) {
	body, contentType, err := encodeJSON(creds)
	if err != nil {
		return nil, err
	}

	var grant TokenGrant
	if err := c.call(ctx, "POST", "/auth/login", callOpts{body: body, contentType: contentType, noRetry: true}, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// RefreshToken performs the silent renewal using the refresh cookie.
func (c *Client) RefreshToken(ctx context.Context) (*TokenGrant, error) {
	var grant TokenGrant
	if err := c.call(ctx, "POST", "/auth/refresh", callOpts{noRetry: true}, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Logout tells the upstream to invalidate the cookies. Callers treat
// failures here as best-effort; local teardown never waits on it.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, "POST", "/auth/logout", callOpts{noRetry: true}, nil)
}

// Me fetches the identity bound to the current cookies.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.call(ctx, "GET", "/auth/me", callOpts{noRetry: true}, &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return &user, nil
}
