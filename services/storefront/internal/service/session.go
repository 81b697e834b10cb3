package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/storage"
)

// Session change actions.
const (
	SessionActionLogin  = "login"
	SessionActionLogout = "logout"
)

// SessionChange is delivered to session subscribers on login and logout.
type SessionChange struct {
	Action string
	User   *domain.User
}

// Session keeps the visitor's token and user record in the bridge. It is
// read through on every call, so two Sessions over the same namespace see
// each other's writes.
type Session struct {
	bridge    *storage.Bridge
	logger    *slog.Logger
	now       func() time.Time
	listeners listeners[SessionChange]
}

// NewSession creates a session over bridge.
func NewSession(bridge *storage.Bridge, l *slog.Logger) *Session {
	if l == nil {
		l = logger.Discard()
	}
	return &Session{bridge: bridge, logger: l, now: time.Now}
}

// Token returns the stored token or "".
func (s *Session) Token(ctx context.Context) string {
	token, _ := s.bridge.LoadRaw(ctx, storage.TokenKey)
	return token
}

// User returns the stored user, or nil when absent or unreadable.
func (s *Session) User(ctx context.Context) *domain.User {
	var u domain.User
	if !s.bridge.Load(ctx, storage.UserKey, &u) {
		return nil
	}
	return &u
}

// SetAuth stores token and user and notifies subscribers.
func (s *Session) SetAuth(ctx context.Context, token string, user *domain.User) {
	s.bridge.SaveRaw(ctx, storage.TokenKey, token)
	if user != nil {
		s.bridge.Save(ctx, storage.UserKey, user)
	} else {
		s.bridge.Remove(ctx, storage.UserKey)
	}
	s.listeners.notify(SessionChange{Action: SessionActionLogin, User: user})
}

// Clear forgets token and user and notifies subscribers.
func (s *Session) Clear(ctx context.Context) {
	s.bridge.Remove(ctx, storage.TokenKey)
	s.bridge.Remove(ctx, storage.UserKey)
	s.listeners.notify(SessionChange{Action: SessionActionLogout})
}

// IsAuthenticated reports whether a token is stored. Tokens that parse as
// JWTs must also not be past their exp claim; the signature is left to the
// backend.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token := s.Token(ctx)
	if token == "" {
		return false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time) {
		logger.WithContext(ctx, s.logger).Debug("stored session token has expired")
		return false
	}
	return true
}

// Subscribe registers fn for login and logout.
func (s *Session) Subscribe(fn func(SessionChange)) (unsubscribe func()) {
	return s.listeners.add(fn)
}
