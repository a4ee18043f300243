// ABOUTME: Application context wiring both principal kinds from configuration
// ABOUTME: Owns the token backend, per-kind transports, management APIs and session managers

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/2389/principal-session/internal/api"
	"github.com/2389/principal-session/internal/config"
	"github.com/2389/principal-session/internal/principal"
	"github.com/2389/principal-session/internal/session"
	"github.com/2389/principal-session/internal/tokenstore"
)

// Manager aliases for the two instantiated kinds.
type (
	GymManager          = session.Manager[principal.Gym, principal.RegisterGymData]
	OrganizationManager = session.Manager[principal.Organization, principal.RegisterOrganizationData]
)

// App is the explicit context handed to presentation code.
type App struct {
	Config *config.Config

	Gym          *GymManager
	Organization *OrganizationManager

	Gyms          *api.GymsAPI
	Organizations *api.OrganizationsAPI
	Plans         *api.PlansAPI

	GymTokens          *tokenstore.Store
	OrganizationTokens *tokenstore.Store

	backend tokenstore.Backend
	logger  *slog.Logger
}

type options struct {
	logger         *slog.Logger
	httpClient     *http.Client
	backend        tokenstore.Backend
	sessionOptions []session.Option
}

// Option configures an App.
type Option func(*options)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient replaces the http.Client of both transports. The configured
// timeout is not applied to it.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTokenBackend uses backend instead of opening the configured storage.
// The App takes ownership and closes it.
func WithTokenBackend(backend tokenstore.Backend) Option {
	return func(o *options) { o.backend = backend }
}

// WithSessionOptions passes extra options to both managers.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) { o.sessionOptions = append(o.sessionOptions, opts...) }
}

// New builds an App from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = OpenBackend(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	a := &App{
		Config:             cfg,
		GymTokens:          tokenstore.New(backend, principal.GymKind.TokenKey),
		OrganizationTokens: tokenstore.New(backend, principal.OrganizationKind.TokenKey),
		backend:            backend,
		logger:             o.logger.With("component", "app"),
	}

	transport := func(tokens *tokenstore.Store) *api.HTTPTransport {
		topts := []api.TransportOption{
			api.WithTokens(tokens),
			api.WithRetries(cfg.Backend.Retries),
			api.WithLogger(o.logger),
		}
		if o.httpClient != nil {
			topts = append(topts, api.WithHTTPClient(o.httpClient))
		} else {
			topts = append(topts, api.WithTimeout(cfg.Backend.Timeout))
		}
		return api.NewHTTPTransport(cfg.Backend.BaseURL, topts...)
	}

	gymTransport := transport(a.GymTokens)
	orgTransport := transport(a.OrganizationTokens)

	a.Gyms = api.NewGymsAPI(gymTransport)
	a.Organizations = api.NewOrganizationsAPI(orgTransport)
	a.Plans = api.NewPlansAPI(gymTransport)

	sopts := append([]session.Option{session.WithLogger(o.logger)}, o.sessionOptions...)
	a.Gym = session.NewManager[principal.Gym, principal.RegisterGymData](principal.GymKind, a.Gyms, a.GymTokens, sopts...)
	a.Organization = session.NewManager[principal.Organization, principal.RegisterOrganizationData](principal.OrganizationKind, a.Organizations, a.OrganizationTokens, sopts...)

	a.logger.Debug("app ready",
		"base_url", cfg.Backend.BaseURL,
		"storage", cfg.Storage.Driver)
	return a, nil
}

// OpenBackend opens the token backend selected by cfg.
func OpenBackend(cfg config.StorageConfig) (tokenstore.Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return tokenstore.NewMemoryBackend(), nil
	case config.DriverFile:
		dir := cfg.Path
		if dir == "" {
			dir = tokenstore.DefaultDir()
		}
		b, err := tokenstore.NewFileBackend(dir)
		if err != nil {
			return nil, fmt.Errorf("opening file token store: %w", err)
		}
		return b, nil
	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(tokenstore.DefaultDir(), "tokens.db")
		}
		b, err := tokenstore.NewSQLiteBackend(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite token store: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalid, cfg.Driver)
	}
}

// SessionStatus is the outcome of reconciling both kinds.
type SessionStatus struct {
	Gym          session.Result
	Organization session.Result
}

// CheckSessions reconciles the stored tokens of both kinds concurrently.
// It returns ctx's error when ctx ended before both checks finished.
func (a *App) CheckSessions(ctx context.Context) (SessionStatus, error) {
	var status SessionStatus

	// A check never fails on its own; each reports the ctx error it ran under
	// so the first cancellation seen also cancels the sibling's request.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status.Gym = a.Gym.CheckSession(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		status.Organization = a.Organization.CheckSession(gctx)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		a.logger.Warn("session check interrupted", "error", err)
		return status, err
	}

	a.logger.Info("sessions checked",
		"gym_authenticated", status.Gym.Success,
		"organization_authenticated", status.Organization.Success)
	return status, nil
}

// Close ends every state subscription and releases the token backend.
func (a *App) Close() error {
	a.Gym.State().Close()
	a.Organization.State().Close()
	if err := a.backend.Close(); err != nil {
		return fmt.Errorf("closing token store: %w", err)
	}
	return nil
}
