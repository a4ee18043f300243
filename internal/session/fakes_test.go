// ABOUTME: Test doubles for session manager tests
// ABOUTME: Programmable gym API with call counting and a failing token store

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/2389/principal-session/internal/api"
	"github.com/2389/principal-session/internal/principal"
	"github.com/2389/principal-session/internal/tokenstore"
)

type gymSession = principal.Session[principal.Gym]

// fakeGymAPI implements API[principal.Gym, principal.RegisterGymData].
type fakeGymAPI struct {
	mu    sync.Mutex
	calls map[string]int

	register func(ctx context.Context, data principal.RegisterGymData) (*gymSession, error)
	login    func(ctx context.Context, creds principal.Credentials) (*gymSession, error)
	logout   func(ctx context.Context) error
	profile  func(ctx context.Context) (*principal.Gym, error)
}

func newFakeGymAPI() *fakeGymAPI {
	return &fakeGymAPI{calls: make(map[string]int)}
}

func (f *fakeGymAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeGymAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGymAPI) Register(ctx context.Context, data principal.RegisterGymData) (*gymSession, error) {
	f.record("register")
	if f.register == nil {
		return nil, &api.Error{Code: api.CodeUnknown}
	}
	return f.register(ctx, data)
}

func (f *fakeGymAPI) Login(ctx context.Context, creds principal.Credentials) (*gymSession, error) {
	f.record("login")
	if f.login == nil {
		return nil, &api.Error{Code: api.CodeUnknown}
	}
	return f.login(ctx, creds)
}

func (f *fakeGymAPI) Logout(ctx context.Context) error {
	f.record("logout")
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx)
}

func (f *fakeGymAPI) GetProfile(ctx context.Context) (*principal.Gym, error) {
	f.record("profile")
	if f.profile == nil {
		return nil, &api.Error{Code: api.CodeUnknown}
	}
	return f.profile(ctx)
}

func sessionFor(token string, g principal.Gym) func(context.Context, principal.Credentials) (*gymSession, error) {
	return func(context.Context, principal.Credentials) (*gymSession, error) {
		return &gymSession{AccessToken: token, Principal: g}, nil
	}
}

func newTokens() *tokenstore.Store {
	return tokenstore.New(tokenstore.NewMemoryBackend(), principal.GymKind.TokenKey)
}

var errDisk = errors.New("disk on fire")

// brokenTokens fails every operation.
type brokenTokens struct{}

func (brokenTokens) Get(context.Context) (string, error) { return "", errDisk }
func (brokenTokens) Set(context.Context, string) error { return errDisk }
func (brokenTokens) SetRefreshToken(context.Context, string) error { return errDisk }
func (brokenTokens) Clear(context.Context) error { return errDisk }

// gatedTokens blocks its first Set until release is closed.
type gatedTokens struct {
	*tokenstore.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedTokens() *gatedTokens {
	return &gatedTokens{
		Store:   newTokens(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedTokens) Set(ctx context.Context, token string) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.Store.Set(ctx, token)
}
