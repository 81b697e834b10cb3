package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

type fakeCreds struct {
	mu    sync.Mutex
	token string
	user  *domain.User
}

func (f *fakeCreds) Token(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) SetAuth(_ context.Context, token string, user *domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token, f.user = token, user
}

func (f *fakeCreds) Clear(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token, f.user = "", nil
}

func (f *fakeCreds) User(context.Context) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	body   []byte
}

func newTestServer(t *testing.T, status int, response string) (*Client, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			ctype:  r.Header.Get("Content-Type"),
			body:   body,
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	doer := NewDoer(Config{Timeout: 5 * time.Second}, nil)
	return NewClient(srv.URL+"/api", doer, nil), &reqs
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", httpclient.New(httpclient.DefaultConfig()), nil)
	assert.Equal(t, "http://localhost:5000/api", c.BaseURL())

	c = NewClient("https://api.example.com/api/", nil, nil)
	assert.Equal(t, "https://api.example.com/api", c.BaseURL())
}

func TestDo_SendsJSONAndDecodesData(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"success":true,"data":{"id":1,"name":"Ganesha","price":4500}}`)

	var p domain.Product
	env, err := c.Do(context.Background(), http.MethodPost, "/products", map[string]string{"name": "Ganesha"}, &p)
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, domain.ID("1"), p.ID)
	assert.Equal(t, "Ganesha", p.Name)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/products", got.path)
	assert.Equal(t, "application/json", got.ctype)
	assert.Empty(t, got.auth)
	assert.JSONEq(t, `{"name":"Ganesha"}`, string(got.body))
}

func TestDo_AttachesBearerToken(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"success":true}`)

	_, err := c.For(&fakeCreds{token: "abc"}).Do(context.Background(), http.MethodGet, "/auth/me", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", (*reqs)[0].auth)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"success":true}`)

	_, err := c.For(&fakeCreds{}).Do(context.Background(), http.MethodGet, "/products", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, (*reqs)[0].auth)
}

func TestDo_ErrorMessageFromServer(t *testing.T) {
	c, _ := newTestServer(t, http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`)

	_, err := c.Do(context.Background(), http.MethodPost, "/auth/login", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Error())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestDo_ErrorFallbackMessage(t *testing.T) {
	for _, body := range []string{`{"success":false}`, `<html>oops</html>`, ``} {
		c, _ := newTestServer(t, http.StatusInternalServerError, body)

		_, err := c.Do(context.Background(), http.MethodGet, "/products", nil, nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr, "body %q", body)
		assert.Equal(t, "Something went wrong", apiErr.Message)
	}
}

func TestDo_UndecodableSuccessBody(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `not json`)

	_, err := c.Do(context.Background(), http.MethodGet, "/products", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestDo_EmptySuccessBody(t *testing.T) {
	c, _ := newTestServer(t, http.StatusNoContent, ``)

	env, err := c.Do(context.Background(), http.MethodDelete, "/products/1", nil, nil)
	require.NoError(t, err)
	assert.False(t, env.Success)
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, NewDoer(Config{Timeout: time.Second}, nil), nil)
	_, err := c.Do(context.Background(), http.MethodGet, "/products", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestDo_NoRetryOnServerError(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusServiceUnavailable, `{"message":"down"}`)

	_, err := c.Do(context.Background(), http.MethodGet, "/products", nil, nil)
	require.Error(t, err)
	assert.Len(t, *reqs, 1)
}

func TestDo_CircuitBreakerStillReturnsServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"message":"gateway"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewDoer(Config{CircuitBreaker: true}, nil), nil)
	_, err := c.Do(context.Background(), http.MethodGet, "/products", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "gateway", apiErr.Message)
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "", Query(nil))
	assert.Equal(t, "", Query(map[string]string{"search": ""}))
	assert.Equal(t, "?category=Marble+Decor&sort=price-low",
		Query(map[string]string{"sort": "price-low", "category": "Marble Decor", "search": ""}))
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", &APIError{Status: 404, Message: "Product not found"}, 404, "NOT_FOUND"},
		{"bad request", &APIError{Status: 400, Message: "Invalid"}, 400, "INVALID_INPUT"},
		{"conflict", &APIError{Status: 409, Message: "Already paid"}, 409, "CONFLICT"},
		{"teapot", &APIError{Status: 418, Message: "short and stout"}, 418, "BACKEND_ERROR"},
		{"server", &APIError{Status: 500, Message: "Something went wrong"}, 502, "UPSTREAM_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *apperrors.AppError
			require.ErrorAs(t, ToAppError(tt.err), &appErr)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.err.(*APIError).Message, appErr.Message)
		})
	}

	plain := errors.New("plain")
	assert.Same(t, plain, ToAppError(plain))
}

func decodeBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
