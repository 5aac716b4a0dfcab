// Package session keeps the console's authentication artifacts: the access
// token, the refresh token and the cached user profile.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/metrics"
	"github.com/simp-lee/amcham/internal/storage"
)

// expiryLeeway treats tokens about to expire as expired.
const expiryLeeway = 10 * time.Second

// AuthBackend is the subset of the backend auth API used by Manager.
type AuthBackend interface {
	SignIn(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (domain.User, error)
}

// Manager owns the persisted session. It implements client.TokenSource.
type Manager struct {
	kv      storage.Store
	api     AuthBackend
	log     *slog.Logger
	metrics *metrics.Collector
	group   singleflight.Group
	now     func() time.Time
}

// NewManager returns a Manager persisting into kv.
func NewManager(kv storage.Store, api AuthBackend, log *slog.Logger, m *metrics.Collector) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{kv: kv, api: api, log: log, metrics: m, now: time.Now}
}

type refreshingKey struct{}

// AccessToken returns a usable access token, refreshing an expired one when
// a refresh token is available.
func (m *Manager) AccessToken(ctx context.Context) (string, bool) {
	token, ok, err := m.kv.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to read access token", slog.Any("error", err))
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	if !m.expired(token) || ctx.Value(refreshingKey{}) != nil {
		return token, true
	}

	tokens, err := m.Refresh(ctx)
	if err != nil {
		return "", false
	}
	return tokens.AccessToken, true
}

// Authenticated reports whether a non-expired access token is stored.
func (m *Manager) Authenticated(ctx context.Context) bool {
	token, ok, err := m.kv.Get(ctx, storage.KeyAccessToken)
	if err != nil || !ok || token == "" {
		return false
	}
	return !m.expired(token)
}

func (m *Manager) expired(token string) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !m.now().Add(expiryLeeway).Before(exp)
}

// Login signs in and persists the returned artifacts.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	tokens, err := m.api.SignIn(ctx, creds)
	if err != nil {
		m.metrics.SessionEvent("login_failed")
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, domain.NewAPIError(http.StatusUnauthorized, domain.ErrUnauthorized.Message, errors.New("sign-in returned no access token"))
	}
	if err := m.store(ctx, tokens); err != nil {
		return nil, err
	}

	user := tokens.User
	if user == nil {
		me, err := m.Me(ctx)
		if err != nil {
			return nil, err
		}
		user = me
	} else if err := storage.SetJSON(ctx, m.kv, storage.KeyUser, user); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}

	m.metrics.SessionEvent("login")
	m.log.InfoContext(ctx, "signed in", slog.Int64("user_id", user.ID))
	return user, nil
}

// Refresh exchanges the stored refresh token. Concurrent callers share one
// backend call. An auth failure invalidates the session.
func (m *Manager) Refresh(ctx context.Context) (domain.AuthTokens, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		rctx := context.WithValue(ctx, refreshingKey{}, true)
		refreshToken, ok, err := m.kv.Get(rctx, storage.KeyRefreshToken)
		if err != nil {
			return domain.AuthTokens{}, fmt.Errorf("load refresh token: %w", err)
		}
		if !ok || refreshToken == "" {
			return domain.AuthTokens{}, domain.NewAPIError(http.StatusUnauthorized, domain.ErrUnauthorized.Message, errors.New("no refresh token"))
		}

		tokens, err := m.api.Refresh(rctx, refreshToken)
		if err != nil {
			if domain.IsAuthFailure(err) {
				m.Invalidate(rctx, "refresh rejected")
			}
			return domain.AuthTokens{}, err
		}
		if tokens.RefreshToken == "" {
			tokens.RefreshToken = refreshToken
		}
		if err := m.store(rctx, tokens); err != nil {
			return domain.AuthTokens{}, err
		}
		m.metrics.SessionEvent("refresh")
		return tokens, nil
	})
	tokens, _ := v.(domain.AuthTokens)
	return tokens, err
}

// Logout revokes the session on the backend and always clears local state.
func (m *Manager) Logout(ctx context.Context) {
	refreshToken, _, err := m.kv.Get(ctx, storage.KeyRefreshToken)
	if err == nil && refreshToken != "" {
		if err := m.api.Logout(ctx, refreshToken); err != nil {
			m.log.WarnContext(ctx, "backend logout failed", slog.Any("error", err))
		}
	}
	m.clear(ctx)
	m.metrics.SessionEvent("logout")
}

// Me loads the current profile from the backend and caches it.
func (m *Manager) Me(ctx context.Context) (*domain.User, error) {
	user, err := m.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := storage.SetJSON(ctx, m.kv, storage.KeyUser, user); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}
	return &user, nil
}

// User returns the cached profile.
func (m *Manager) User(ctx context.Context) (*domain.User, bool) {
	var user domain.User
	ok, err := storage.GetJSON(ctx, m.kv, storage.KeyUser, &user)
	if err != nil {
		m.log.WarnContext(ctx, "discarding unreadable cached profile", slog.Any("error", err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &user, true
}

// Invalidate drops every local artifact.
func (m *Manager) Invalidate(ctx context.Context, reason string) {
	m.clear(ctx)
	m.metrics.SessionEvent("invalidated")
	m.log.WarnContext(ctx, "session invalidated", slog.String("reason", reason))
}

// HandleAuthFailure is registered with client.Client.OnAuthFailure.
func (m *Manager) HandleAuthFailure(ctx context.Context, f client.AuthFailure) {
	m.Invalidate(ctx, fmt.Sprintf("%d on %s %s", f.Status, f.Method, f.Path))
}

func (m *Manager) store(ctx context.Context, tokens domain.AuthTokens) error {
	if err := m.kv.Set(ctx, storage.KeyAccessToken, tokens.AccessToken); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if tokens.RefreshToken != "" {
		if err := m.kv.Set(ctx, storage.KeyRefreshToken, tokens.RefreshToken); err != nil {
			return fmt.Errorf("persist refresh token: %w", err)
		}
	}
	return nil
}

func (m *Manager) clear(ctx context.Context) {
	if err := m.kv.Delete(ctx, storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser); err != nil {
		m.log.ErrorContext(ctx, "failed to clear session", slog.Any("error", err))
	}
}

// ExpiresAt decodes the exp claim of token without verifying its signature.
// ok is false for opaque tokens and tokens without exp.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
