// ABOUTME: Session actions for one principal kind: register, login, logout, checkSession
// ABOUTME: Each action is a read-modify-write of the state container around one API call

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/2389/principal-session/internal/api"
	"github.com/2389/principal-session/internal/principal"
)

// API is the backend surface the manager drives. api.Client satisfies it.
type API[P, R any] interface {
	Register(ctx context.Context, data R) (*principal.Session[P], error)
	Login(ctx context.Context, creds principal.Credentials) (*principal.Session[P], error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*P, error)
}

// TokenStore persists the bearer token. tokenstore.Store satisfies it.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// options holds optional Manager configuration.
type options struct {
	logger     *slog.Logger
	staleGuard bool
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStaleResponseGuard drops the response of an action once a newer action
// has started, instead of letting the last response to arrive win.
func WithStaleResponseGuard() Option {
	return func(o *options) {
		o.staleGuard = true
	}
}

// Manager runs the session actions of one principal kind.
// P is the principal type, R the registration payload.
type Manager[P, R any] struct {
	kind   principal.Kind
	api    API[P, R]
	tokens TokenStore
	state  *Container[P]
	logger *slog.Logger

	staleGuard bool
	generation atomic.Uint64

	// commitMu makes "check generation, write tokens, write state" one step,
	// so a logout cannot land between a login's token write and its state write.
	commitMu sync.Mutex
}

// NewManager creates a manager with an empty (Anonymous) state.
func NewManager[P, R any](kind principal.Kind, backend API[P, R], tokens TokenStore, opts ...Option) *Manager[P, R] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With("component", "session", "kind", kind.Name)
	return &Manager[P, R]{
		kind:       kind,
		api:        backend,
		tokens:     tokens,
		state:      NewContainer[P](logger),
		logger:     logger,
		staleGuard: o.staleGuard,
	}
}

// Kind returns the manager's principal kind.
func (m *Manager[P, R]) Kind() principal.Kind {
	return m.kind
}

// State returns the container, for subscriptions.
func (m *Manager[P, R]) State() *Container[P] {
	return m.state
}

// Snapshot returns the current state.
func (m *Manager[P, R]) Snapshot() State[P] {
	return m.state.Snapshot()
}

// Views returns the derived read-only projections.
func (m *Manager[P, R]) Views() *Views[P] {
	return NewViews(m.state)
}

// Register creates a principal and, on success, authenticates as it.
// On failure the existing principal/session are kept and Error is set.
func (m *Manager[P, R]) Register(ctx context.Context, data R) Result {
	gen := m.begin(func(s State[P]) State[P] {
		s.Loading = true
		s.Error = ""
		return s
	})

	sess, err := m.api.Register(ctx, data)
	if err != nil {
		return m.fail(gen, "register", err, m.kind.RegisterFailed)
	}
	return m.authenticate(ctx, gen, "register", sess)
}

// Login authenticates with credentials.
// On failure the existing principal/session are kept and Error is set.
func (m *Manager[P, R]) Login(ctx context.Context, creds principal.Credentials) Result {
	gen := m.begin(func(s State[P]) State[P] {
		s.Loading = true
		s.Error = ""
		return s
	})

	sess, err := m.api.Login(ctx, creds)
	if err != nil {
		return m.fail(gen, "login", err, m.kind.LoginFailed)
	}
	return m.authenticate(ctx, gen, "login", sess)
}

// Logout tells the backend (best effort), clears the stored token and resets
// the state to Anonymous. It always succeeds.
func (m *Manager[P, R]) Logout(ctx context.Context) Result {
	m.begin(func(s State[P]) State[P] {
		s.Loading = true
		return s
	})

	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout request failed, clearing local session anyway", "error", err)
	}

	m.commitMu.Lock()
	m.clearTokens(ctx)
	m.state.Set(State[P]{})
	m.commitMu.Unlock()

	m.logger.Debug("session transition", "action", "logout", "phase", PhaseAnonymous)
	return Result{Success: true}
}

// CheckSession reconciles the stored token with the backend, typically on
// application start. With a stored token the profile is fetched: success
// rebuilds the session from the stored token and the fetched principal;
// failure clears the token. Without a token no request is made. Any failure
// ends Anonymous with no error message.
func (m *Manager[P, R]) CheckSession(ctx context.Context) Result {
	token, err := m.tokens.Get(ctx)
	if err != nil {
		m.logger.Warn("reading stored token", "error", err)
		m.clearTokens(ctx)
		token = ""
	}

	if token == "" {
		m.begin(func(State[P]) State[P] { return State[P]{} })
		m.logger.Debug("session transition", "action", "check_session", "phase", PhaseAnonymous, "reason", "no_token")
		return Result{}
	}

	gen := m.begin(func(s State[P]) State[P] {
		s.Loading = true
		return s
	})

	profile, err := m.api.GetProfile(ctx)

	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if !m.current(gen) {
		return m.stale("check_session")
	}

	if err != nil {
		m.logger.Debug("stored token rejected", "error", err)
		m.clearTokens(ctx)
		m.state.Set(State[P]{})
		m.logger.Debug("session transition", "action", "check_session", "phase", PhaseAnonymous, "reason", "invalid_token")
		return Result{}
	}

	m.state.Set(State[P]{
		Principal: profile,
		Session:   &principal.Session[P]{AccessToken: token, Principal: *profile},
	})
	m.logger.Debug("session transition", "action", "check_session", "phase", PhaseAuthenticated)
	return Result{Success: true}
}

// RefreshProfile re-fetches the principal of an authenticated session. The
// current principal/session stay visible during the call, and a failure only
// sets Error: unlike CheckSession it never logs out.
func (m *Manager[P, R]) RefreshProfile(ctx context.Context) Result {
	if !m.state.Snapshot().Authenticated() {
		return Result{}
	}

	gen := m.begin(func(s State[P]) State[P] {
		s.Loading = true
		s.Error = ""
		return s
	})

	profile, err := m.api.GetProfile(ctx)
	if err != nil {
		return m.fail(gen, "refresh_profile", err, m.kind.ProfileFailed)
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if !m.current(gen) {
		return m.stale("refresh_profile")
	}

	m.state.Update(func(s State[P]) State[P] {
		s.Loading = false
		if s.Session == nil {
			// logged out while the request was in flight
			return s
		}
		sess := *s.Session
		sess.Principal = *profile
		s.Principal = profile
		s.Session = &sess
		s.Error = ""
		return s
	})
	return Result{Success: true}
}

// ClearError resets Error, leaving everything else untouched.
func (m *Manager[P, R]) ClearError() {
	m.state.Update(func(s State[P]) State[P] {
		s.Error = ""
		return s
	})
}

// begin starts an action: it claims a new generation and applies fn.
func (m *Manager[P, R]) begin(fn func(State[P]) State[P]) uint64 {
	gen := m.generation.Add(1)
	m.state.Update(fn)
	return gen
}

// current reports whether gen may still write its outcome.
func (m *Manager[P, R]) current(gen uint64) bool {
	return !m.staleGuard || m.generation.Load() == gen
}

func (m *Manager[P, R]) stale(action string) Result {
	m.logger.Debug("dropping superseded response", "action", action)
	return Result{Stale: true}
}

// authenticate stores the session's tokens and replaces the state with it.
func (m *Manager[P, R]) authenticate(ctx context.Context, gen uint64, action string, sess *principal.Session[P]) Result {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if !m.current(gen) {
		return m.stale(action)
	}

	if sess.AccessToken != "" {
		if err := m.tokens.Set(ctx, sess.AccessToken); err != nil {
			m.logger.Warn("storing access token", "error", err)
		}
	}
	if sess.RefreshToken != "" {
		if err := m.tokens.SetRefreshToken(ctx, sess.RefreshToken); err != nil {
			m.logger.Warn("storing refresh token", "error", err)
		}
	}

	p := sess.Principal
	m.state.Set(State[P]{Principal: &p, Session: sess})

	m.logger.Debug("session transition", "action", action, "phase", PhaseAuthenticated)
	return Result{Success: true}
}

// fail records err as the user-facing error, keeping principal/session.
func (m *Manager[P, R]) fail(gen uint64, action string, err error, fallback string) Result {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if !m.current(gen) {
		return m.stale(action)
	}

	msg := errorMessage(err, fallback)
	m.state.Update(func(s State[P]) State[P] {
		s.Loading = false
		s.Error = msg
		return s
	})

	m.logger.Debug("session transition", "action", action, "phase", PhaseAuthenticationFailed, "error", err)
	return Result{Error: msg}
}

// clearTokens removes the stored tokens even when ctx is already cancelled.
func (m *Manager[P, R]) clearTokens(ctx context.Context) {
	if err := m.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("clearing stored token", "error", err)
	}
}

// errorMessage returns the backend-reported message, or fallback when the
// backend gave none or the response could not be understood.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" && !apiErr.Malformed() {
		return apiErr.Message
	}
	return fallback
}
