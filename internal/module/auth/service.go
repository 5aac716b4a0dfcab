package auth

import (
	"context"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/session"
)

// Service defines the session operations exposed by the console.
type Service interface {
	Login(ctx context.Context, email, password string) (*SessionResponse, error)
	Logout(ctx context.Context)
	Refresh(ctx context.Context) (*SessionResponse, error)
	Me(ctx context.Context) (*SessionResponse, error)
}

// Sessions is the part of *session.Manager the service relies on.
type Sessions interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Refresh(ctx context.Context) (domain.AuthTokens, error)
	Logout(ctx context.Context)
	Me(ctx context.Context) (*domain.User, error)
	AccessToken(ctx context.Context) (string, bool)
	User(ctx context.Context) (*domain.User, bool)
}

type authService struct {
	sessions Sessions
}

// NewService creates a new auth Service backed by sessions.
func NewService(sessions Sessions) Service {
	return &authService{sessions: sessions}
}

// Login signs in against the backend and persists the session.
func (s *authService) Login(ctx context.Context, email, password string) (*SessionResponse, error) {
	user, err := s.sessions.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, user), nil
}

func (s *authService) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
}

// Refresh exchanges the stored refresh token for a new access token.
func (s *authService) Refresh(ctx context.Context) (*SessionResponse, error) {
	tokens, err := s.sessions.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	user := tokens.User
	if user == nil {
		user, _ = s.sessions.User(ctx)
	}
	return s.describe(ctx, user), nil
}

// Me reloads the profile of the signed-in account.
func (s *authService) Me(ctx context.Context) (*SessionResponse, error) {
	if _, ok := s.sessions.AccessToken(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.sessions.Me(ctx)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, user), nil
}

func (s *authService) describe(ctx context.Context, user *domain.User) *SessionResponse {
	resp := &SessionResponse{User: user, Admin: user.HasRole(domain.RoleAdmin)}
	token, ok := s.sessions.AccessToken(ctx)
	if !ok {
		return resp
	}
	resp.Authenticated = true
	if exp, ok := session.ExpiresAt(token); ok {
		resp.ExpiresAt = exp.Unix()
	}
	return resp
}
