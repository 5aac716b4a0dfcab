package client

import (
	"context"
	"net/http"

	"github.com/simp-lee/amcham/internal/domain"
)

// AuthAPI wraps the backend authentication endpoints.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI returns the auth endpoints of c.
func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{client: c}
}

// SignIn exchanges credentials for tokens.
func (a *AuthAPI) SignIn(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error) {
	var out domain.AuthTokens
	err := a.client.Do(ctx, Call{
		Resource: "auth",
		Method:   http.MethodPost,
		Path:     "/api/auth/signin",
		Body:     creds,
	}, &out)
	return out, err
}

// Refresh exchanges a refresh token for a new token pair.
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
	var out domain.AuthTokens
	err := a.client.Do(ctx, Call{
		Resource: "auth",
		Method:   http.MethodPost,
		Path:     "/api/auth/refresh",
		Body:     map[string]string{"refreshToken": refreshToken},
	}, &out)
	return out, err
}

// Logout revokes the refresh token on the backend.
func (a *AuthAPI) Logout(ctx context.Context, refreshToken string) error {
	return a.client.Do(ctx, Call{
		Resource: "auth",
		Method:   http.MethodPost,
		Path:     "/api/auth/logout",
		Body:     map[string]string{"refreshToken": refreshToken},
	}, nil)
}

// Me returns the profile of the token holder.
func (a *AuthAPI) Me(ctx context.Context) (domain.User, error) {
	var out domain.User
	err := a.client.Do(ctx, Call{
		Resource: "auth",
		Method:   http.MethodGet,
		Path:     "/api/v1/user/me",
	}, &out)
	return out, err
}
