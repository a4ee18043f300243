// ABOUTME: In-memory HTTP backend speaking the gym/organization envelope API
// ABOUTME: chi router with JWT bearer auth, used by integration tests and local runs

package fakebackend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/principal-session/internal/api"
	"github.com/2389/principal-session/internal/principal"
)

// Backend error codes.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeUnauthorized  = "AUTH_401"
	CodeForbidden     = "AUTH_403"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidStatus = "INVALID_STATUS"
	CodeBadRequest    = "BAD_REQUEST"
	CodeInternal      = "INTERNAL_ERROR"
)

// DefaultTokenTTL is the access token lifetime.
const DefaultTokenTTL = time.Hour

const maxBodyBytes = 1 << 20

// Registration is the register request body of both kinds.
type Registration struct {
	Name            string `json:"name"`
	CNPJ            string `json:"cnpj"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ResponsibleName string `json:"responsible_name"`
}

// options holds optional Server configuration.
type options struct {
	logger     *slog.Logger
	tokenTTL   time.Duration
	bcryptCost int
	plans      []principal.Plan
}

// Option configures a Server.
type Option func(*options)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTokenTTL sets the access token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(o *options) { o.tokenTTL = ttl }
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// WithPlans replaces the default plan catalogue.
func WithPlans(plans ...principal.Plan) Option {
	return func(o *options) { o.plans = plans }
}

// DefaultPlans is the catalogue served when no WithPlans option is given.
func DefaultPlans() []principal.Plan {
	return []principal.Plan{
		{ID: 1, Name: "Básico", Description: "Acesso à academia", Price: 89.90, DurationDays: 30, IsActive: true},
		{ID: 2, Name: "Premium", Description: "Acesso ilimitado a academias parceiras", Price: 149.90, DurationDays: 30, IsActive: true},
		{ID: 3, Name: "Anual", Description: "Plano premium com desconto anual", Price: 1499.00, DurationDays: 365, IsActive: true},
		{ID: 4, Name: "Legado", Description: "Descontinuado", Price: 59.90, DurationDays: 30, IsActive: false},
	}
}

// Server is an in-memory implementation of the backend.
type Server struct {
	mu    sync.Mutex
	dirs  map[string]*directory // kind name -> directory
	plans []principal.Plan

	tokens     *issuer
	bcryptCost int
	logger     *slog.Logger
	router     chi.Router
}

// New creates a server signing tokens with secret. An empty secret is
// replaced by a random one.
func New(secret []byte, opts ...Option) *Server {
	o := options{
		logger:     slog.Default(),
		tokenTTL:   DefaultTokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		plans:      DefaultPlans(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(secret) == 0 {
		secret = []byte(uuid.New().String())
	}

	s := &Server{
		dirs:       make(map[string]*directory),
		plans:      o.plans,
		tokens:     newIssuer(secret, o.tokenTTL),
		bcryptCost: o.bcryptCost,
		logger:     o.logger.With("component", "fakebackend"),
	}
	for _, kind := range principal.Kinds() {
		s.dirs[kind.Name] = newDirectory(kind)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "Method not allowed")
	})

	for _, kind := range principal.Kinds() {
		r.Route("/"+kind.Prefix, func(r chi.Router) {
			r.Post("/auth/register", s.handleRegister(kind))
			r.Post("/auth/login", s.handleLogin(kind))

			r.Group(func(r chi.Router) {
				r.Use(s.requireToken(kind))

				r.Post("/auth/logout", s.handleLogout)
				r.Get("/profile", s.handleProfile(kind))
				r.Get("/users", s.handleUsers(kind, ""))
				r.Patch("/users/{id}/toggle", s.handleToggle(kind))
				r.Delete("/users/{id}", s.handleRemove(kind, false))
				r.Get("/stats", s.handleStats(kind))

				if kind == principal.OrganizationKind {
					r.Get("/users/pending", s.handleUsers(kind, principal.UserStatusPending))
					r.Patch("/users/{id}/approve", s.handleApprove(kind))
					r.Delete("/users/{id}/reject", s.handleRemove(kind, true))
				}
			})
		})
	}

	r.Get("/plans", s.handlePlans)
	return r
}

// logRequests logs one line per request, tagged with chi's request ID.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

type claimsKey struct{}

// requireToken rejects requests without a valid bearer token for kind.
func (s *Server) requireToken(kind principal.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Token não fornecido")
				return
			}
			c, err := s.tokens.verify(token, kind.Name)
			if err != nil {
				s.logger.Debug("rejected token", "kind", kind.Name, "error", err)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Token inválido")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, c)))
		})
	}
}

func claimsFrom(ctx context.Context) *claims {
	c, _ := ctx.Value(claimsKey{}).(*claims)
	return c
}

// SeedAccount registers an account directly, bypassing HTTP.
func (s *Server) SeedAccount(kind principal.Kind, reg Registration) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.dirs[kind.Name].add(accountFrom(reg, hash))
	if err != nil {
		return 0, err
	}
	return a.ID, nil
}

// LinkUser attaches a user to an account and returns the user's ID.
func (s *Server) LinkUser(kind principal.Kind, accountID int64, fullName, email, status string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.dirs[kind.Name].link(accountID, fullName, email, status)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// SetAccountActive enables or disables login for an account.
func (s *Server) SetAccountActive(kind principal.Kind, accountID int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.dirs[kind.Name].get(accountID)
	if err != nil {
		return err
	}
	a.IsActive = active
	return nil
}

func writeEnvelope(w http.ResponseWriter, status int, env api.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeData(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "encoding response")
		return
	}
	writeEnvelope(w, status, api.Envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusOK, api.Envelope{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, api.Envelope{Error: &api.Error{Code: code, Message: message}})
}
