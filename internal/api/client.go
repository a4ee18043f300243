// ABOUTME: Generic principal API client for register, login, logout and profile
// ABOUTME: Stateless single-exchange calls parameterized by a principal kind descriptor

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/2389/principal-session/internal/principal"
)

// Client performs the authentication exchanges of one principal kind.
// P is the principal type, R the registration payload.
type Client[P, R any] struct {
	transport Transport
	kind      principal.Kind
}

// NewClient creates a client for kind over transport.
func NewClient[P, R any](transport Transport, kind principal.Kind) *Client[P, R] {
	return &Client[P, R]{transport: transport, kind: kind}
}

// Kind returns the client's principal kind.
func (c *Client[P, R]) Kind() principal.Kind {
	return c.kind
}

// Register creates a new principal and returns its session.
// POST /{kind}/auth/register
func (c *Client[P, R]) Register(ctx context.Context, data R) (*principal.Session[P], error) {
	env := c.transport.Do(ctx, http.MethodPost, c.kind.Path("auth", "register"), data)
	return decodeSession[P](c.kind, env)
}

// Login authenticates with email and password.
// POST /{kind}/auth/login
func (c *Client[P, R]) Login(ctx context.Context, creds principal.Credentials) (*principal.Session[P], error) {
	env := c.transport.Do(ctx, http.MethodPost, c.kind.Path("auth", "login"), creds)
	return decodeSession[P](c.kind, env)
}

// Logout tells the backend to invalidate the current token.
// POST /{kind}/auth/logout
func (c *Client[P, R]) Logout(ctx context.Context) error {
	return ack(c.transport.Do(ctx, http.MethodPost, c.kind.Path("auth", "logout"), nil))
}

// GetProfile fetches the principal the current token belongs to.
// GET /{kind}/profile
func (c *Client[P, R]) GetProfile(ctx context.Context) (*P, error) {
	return decode[P](c.transport.Do(ctx, http.MethodGet, c.kind.Path("profile"), nil))
}

// decodeSession reads {access_token, refresh_token?, <kind.Name>: principal}.
// A missing access token is not an error; a missing principal is.
func decodeSession[P any](kind principal.Kind, env Envelope) (*principal.Session[P], error) {
	fields, err := decode[map[string]json.RawMessage](env)
	if err != nil {
		return nil, err
	}

	s := &principal.Session[P]{}
	if raw, ok := (*fields)["access_token"]; ok {
		if err := json.Unmarshal(raw, &s.AccessToken); err != nil {
			return nil, &Error{Code: CodeDecodeError, Message: fmt.Sprintf("decoding access_token: %v", err)}
		}
	}
	if raw, ok := (*fields)["refresh_token"]; ok {
		if err := json.Unmarshal(raw, &s.RefreshToken); err != nil {
			return nil, &Error{Code: CodeDecodeError, Message: fmt.Sprintf("decoding refresh_token: %v", err)}
		}
	}

	raw, ok := (*fields)[kind.Name]
	if !ok || string(raw) == "null" {
		return nil, &Error{Code: CodeDecodeError, Message: fmt.Sprintf("session is missing %s", kind.Name)}
	}
	if err := json.Unmarshal(raw, &s.Principal); err != nil {
		return nil, &Error{Code: CodeDecodeError, Message: fmt.Sprintf("decoding %s: %v", kind.Name, err)}
	}
	return s, nil
}
