// Package api is the client for the storefront REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// FallbackMessage is reported when a failed response carries no message.
const FallbackMessage = "Something went wrong"

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 4 << 20

// Config configures the REST client transport.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker bool
}

// Credentials supplies and records the bearer token for one visitor.
type Credentials interface {
	Token(ctx context.Context) string
	SetAuth(ctx context.Context, token string, user *domain.User)
	Clear(ctx context.Context)
}

// Envelope is the response shape of every backend endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Count   *int            `json:"count,omitempty"`
}

// Client issues JSON requests against the backend. A Client without
// credentials sends anonymous requests; use For to bind a visitor.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	creds   Credentials
	logger  *slog.Logger
}

// NewDoer builds the transport: the pooled single-attempt HTTP client,
// optionally wrapped in a circuit breaker.
func NewDoer(cfg Config, l *slog.Logger) httpclient.Doer {
	hc := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}
	client := httpclient.New(hc)
	if !cfg.CircuitBreaker {
		return client
	}
	if l == nil {
		l = logger.Discard()
	}
	return httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("storefront-api"), l)
}

// NewClient creates a client for baseURL. An empty baseURL falls back to
// DefaultBaseURL.
func NewClient(baseURL string, doer httpclient.Doer, l *slog.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Client{baseURL: baseURL, doer: doer, logger: l}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// For returns a copy of c that authenticates with creds.
func (c *Client) For(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

// Auth returns the auth endpoints.
func (c *Client) Auth() *AuthAPI { return &AuthAPI{c: c} }

// Products returns the product endpoints.
func (c *Client) Products() *ProductsAPI { return &ProductsAPI{c: c} }

// Orders returns the order endpoints.
func (c *Client) Orders() *OrdersAPI { return &OrdersAPI{c: c} }

// Do sends body as JSON to <base><endpoint> and decodes the envelope. When
// out is non-nil the envelope's data is decoded into it. Non-2xx responses
// return *APIError; transport failures return an upstream AppError.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	if c.creds != nil {
		if token := c.creds.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	tracing.InjectHTTP(ctx, req.Header)

	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		logger.WithContext(ctx, c.logger).Warn("backend request failed",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Upstream("storefront backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Upstream("read backend response", err)
	}

	logger.WithContext(ctx, c.logger).Debug("backend request",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	env := &Envelope{}
	decodeErr := decodeEnvelope(raw, env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := FallbackMessage
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return nil, apperrors.Upstream("malformed backend response", decodeErr)
	}

	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, apperrors.Upstream("malformed backend response", fmt.Errorf("decode data: %w", err))
		}
	}
	return env, nil
}

// decodeEnvelope treats an empty body as an empty envelope.
func decodeEnvelope(raw []byte, env *Envelope) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, env)
}

// Query builds a query string from the non-empty values in params, keys
// sorted. It returns "" or a string starting with "?".
func Query(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	return "?" + sb.String()
}
