// ABOUTME: Token store contract and per-kind binding over a durable backend
// ABOUTME: Implements get/set/clear of the bearer token and the optional refresh token

package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrNotFound is returned by a Backend when the key has no value
var ErrNotFound = errors.New("token not found")

// ErrNoToken is returned by Store.Token when nothing is stored
var ErrNoToken = errors.New("no token stored")

// refreshSuffix is appended to a kind's key to store its refresh token
const refreshSuffix = ":refresh"

// Backend is a durable string key-value holder.
type Backend interface {
	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) (string, error)
	// Save overwrites the value stored under key.
	Save(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Store holds one principal kind's bearer token in a Backend.
type Store struct {
	backend Backend
	key     string
}

var _ oauth2.TokenSource = (*Store)(nil)

// New binds backend to key.
func New(backend Backend, key string) *Store {
	return &Store{backend: backend, key: key}
}

// Key returns the storage key of the access token.
func (s *Store) Key() string {
	return s.key
}

// Get returns the stored access token, or "" when none is stored.
func (s *Store) Get(ctx context.Context) (string, error) {
	return s.load(ctx, s.key)
}

// Set overwrites the stored access token. An empty token removes it.
func (s *Store) Set(ctx context.Context, token string) error {
	return s.save(ctx, s.key, token)
}

// Clear removes the access token and any refresh token.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	if err := s.backend.Delete(ctx, s.key+refreshSuffix); err != nil {
		return fmt.Errorf("clearing refresh token: %w", err)
	}
	return nil
}

// RefreshToken returns the stored refresh token, or "" when none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.load(ctx, s.key+refreshSuffix)
}

// SetRefreshToken overwrites the stored refresh token. An empty token removes it.
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.save(ctx, s.key+refreshSuffix, token)
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	ctx := context.Background()
	access, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, ErrNoToken
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}, nil
}

func (s *Store) load(ctx context.Context, key string) (string, error) {
	value, err := s.backend.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) save(ctx context.Context, key, value string) error {
	if value == "" {
		if err := s.backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
		return nil
	}
	if err := s.backend.Save(ctx, key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
