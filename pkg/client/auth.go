package client

import (
	"context"
	"net/http"
)

// Login authenticates and stores the returned tokens and profile.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (AuthResult, error) {
	body, err := jsonPayload(map[string]string{
		"username_or_email": usernameOrEmail,
		"password":          password,
	})
	if err != nil {
		return AuthResult{}, err
	}
	return c.authenticate(ctx, "/api/auth/login/", body)
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	body, err := jsonPayload(input)
	if err != nil {
		return AuthResult{}, err
	}
	return c.authenticate(ctx, "/api/auth/register/", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body *payload) (AuthResult, error) {
	data, err := c.do(ctx, call{method: http.MethodPost, path: path, body: body, anonymous: true})
	if err != nil {
		return AuthResult{}, err
	}
	var result AuthResult
	if err := decodeData(data, "", &result); err != nil {
		return AuthResult{}, err
	}
	if c.creds != nil {
		if err := c.creds.SaveLogin(ctx, result.Tokens.Access, result.Tokens.Refresh, result.User); err != nil {
			return AuthResult{}, err
		}
	}
	return result, nil
}

// Logout revokes the refresh token. The local session is cleared even when
// the server call fails; that error is still returned.
func (c *Client) Logout(ctx context.Context) error {
	if c.creds == nil {
		return nil
	}
	var callErr error
	if refresh := c.creds.RefreshToken(); refresh != "" {
		body, err := jsonPayload(map[string]string{"refresh": refresh})
		if err != nil {
			return err
		}
		_, callErr = c.do(ctx, call{method: http.MethodPost, path: "/api/users/logout/", body: body})
	}
	if err := c.creds.Clear(ctx); err != nil {
		return err
	}
	return callErr
}

// Profile fetches the current user.
func (c *Client) Profile(ctx context.Context) (User, error) {
	if !c.Authenticated() {
		return User{}, ErrNotAuthenticated
	}
	var user User
	err := c.getData(ctx, "/api/auth/profile/", nil, "user", &user)
	return user, err
}
