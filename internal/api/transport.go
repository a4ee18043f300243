// ABOUTME: HTTP transport that exchanges JSON envelopes with the backend
// ABOUTME: Injects bearer tokens and request IDs, folds transport failures into envelopes

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/2389/principal-session/internal/tokenstore"
)

const (
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20

	defaultTimeout = 15 * time.Second
	retryBackoff   = 200 * time.Millisecond
)

// Transport performs one request/response exchange with the backend.
// It never returns a Go error: failures arrive as unsuccessful envelopes.
type Transport interface {
	Do(ctx context.Context, method, path string, body any) Envelope
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	tokens  oauth2.TokenSource
	retries int
	logger  *slog.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// WithRetries retries idempotent GET requests up to n extra times on network errors.
func WithRetries(n int) TransportOption {
	return func(t *HTTPTransport) {
		if n > 0 {
			t.retries = n
		}
	}
}

// WithTokens sets the source of the bearer token, normally a *tokenstore.Store.
// A source returning tokenstore.ErrNoToken sends no Authorization header.
func WithTokens(tokens oauth2.TokenSource) TransportOption {
	return func(t *HTTPTransport) {
		t.tokens = tokens
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) TransportOption {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.logger = logger.With("component", "transport")
		}
	}
}

// NewHTTPTransport creates a transport rooted at baseURL.
func NewHTTPTransport(baseURL string, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default().With("component", "transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do sends body (JSON-encoded when non-nil) to path and decodes the envelope.
func (t *HTTPTransport) Do(ctx context.Context, method, path string, body any) Envelope {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return Failure(CodeEncodeError, fmt.Sprintf("encoding request: %v", err))
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += t.retries
	}

	var env Envelope
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Failure(CodeNetworkError, ctx.Err().Error())
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		var retryable bool
		env, retryable = t.exchange(ctx, method, path, payload)
		if !retryable {
			return env
		}
		t.logger.Debug("request failed, retrying",
			"method", method,
			"path", path,
			"attempt", attempt+1)
	}
	return env
}

// exchange performs a single attempt. retryable is true only for network
// failures that did not come from ctx.
func (t *HTTPTransport) exchange(ctx context.Context, method, path string, payload []byte) (env Envelope, retryable bool) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return Failure(CodeNetworkError, fmt.Sprintf("creating request: %v", err)), false
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	t.authorize(req)

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug("request error",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err)
		return Failure(CodeNetworkError, err.Error()), ctx.Err() == nil
	}
	defer resp.Body.Close()

	t.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Failure(CodeNetworkError, fmt.Sprintf("reading response: %v", err)), ctx.Err() == nil
	}

	if err := json.Unmarshal(data, &env); err != nil {
		return Failure(CodeInvalidResponse, fmt.Sprintf("parsing response (HTTP %d): %v", resp.StatusCode, err)), false
	}
	return env, false
}

// authorize attaches the bearer token, if one is stored.
func (t *HTTPTransport) authorize(req *http.Request) {
	if t.tokens == nil {
		return
	}
	tok, err := t.tokens.Token()
	if errors.Is(err, tokenstore.ErrNoToken) {
		return
	}
	if err != nil {
		t.logger.Warn("reading token for request", "error", err)
		return
	}
	tok.SetAuthHeader(req)
}
