package api

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// AuthAPI wraps the /auth endpoints.
type AuthAPI struct {
	c *Client
}

// Signup creates an account. On success the returned token and user are
// recorded in the client's credentials.
func (a *AuthAPI) Signup(ctx context.Context, req domain.SignupRequest) (*domain.AuthResult, error) {
	return a.authenticate(ctx, "/auth/signup", req)
}

// Login exchanges credentials for a token, recording it like Signup.
func (a *AuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	return a.authenticate(ctx, "/auth/login", req)
}

func (a *AuthAPI) authenticate(ctx context.Context, endpoint string, body any) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if _, err := a.c.Do(ctx, http.MethodPost, endpoint, body, &result); err != nil {
		return nil, err
	}
	if result.Token != "" && a.c.creds != nil {
		a.c.creds.SetAuth(ctx, result.Token, result.User)
	}
	return &result, nil
}

// Logout forgets the stored token and user. The backend is not called.
func (a *AuthAPI) Logout(ctx context.Context) {
	if a.c.creds != nil {
		a.c.creds.Clear(ctx)
	}
}

// CurrentUser fetches the authenticated user from the backend.
func (a *AuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if _, err := a.c.Do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Token returns the stored token, or "".
func (a *AuthAPI) Token(ctx context.Context) string {
	if a.c.creds == nil {
		return ""
	}
	return a.c.creds.Token(ctx)
}

// IsAuthenticated reports whether a token is stored.
func (a *AuthAPI) IsAuthenticated(ctx context.Context) bool {
	return a.Token(ctx) != ""
}

// User returns the stored user record when the credentials keep one.
func (a *AuthAPI) User(ctx context.Context) *domain.User {
	if u, ok := a.c.creds.(interface {
		User(ctx context.Context) *domain.User
	}); ok {
		return u.User(ctx)
	}
	return nil
}
