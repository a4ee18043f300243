// ABOUTME: HTTP handlers for authentication, profile, linked users, stats and plans
// ABOUTME: Every response is a {success, data, message, error} envelope

package fakebackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/principal-session/internal/principal"
)

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(h, "Bearer ")
	return token, token != ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body")
		return false
	}
	return true
}

func accountFrom(reg Registration, hash []byte) *account {
	return &account{
		Name:            strings.TrimSpace(reg.Name),
		CNPJ:            strings.TrimSpace(reg.CNPJ),
		Email:           reg.Email,
		Phone:           reg.Phone,
		Address:         reg.Address,
		ResponsibleName: reg.ResponsibleName,
		PasswordHash:    hash,
	}
}

// principalView renders an account as the kind's wire type.
func principalView(kind principal.Kind, a *account) any {
	if kind == principal.GymKind {
		return principal.Gym{
			ID: a.ID, Name: a.Name, CNPJ: a.CNPJ, Email: a.Email, Phone: a.Phone,
			Address: a.Address, ResponsibleName: a.ResponsibleName, IsActive: a.IsActive,
		}
	}
	return principal.Organization{
		ID: a.ID, Name: a.Name, CNPJ: a.CNPJ, Email: a.Email, Phone: a.Phone,
		Address: a.Address, ResponsibleName: a.ResponsibleName, IsActive: a.IsActive,
	}
}

// memberView renders a linked user as the kind's wire type.
func memberView(kind principal.Kind, m *member) any {
	linkedAt := m.LinkedAt.Format(time.RFC3339)
	if kind == principal.GymKind {
		return principal.GymUser{ID: m.ID, FullName: m.FullName, Email: m.Email, Status: m.Status, LinkedAt: linkedAt}
	}
	id, _ := strconv.ParseInt(m.ID, 10, 64)
	return principal.OrganizationUser{ID: id, FullName: m.FullName, Email: m.Email, Status: m.Status, LinkedAt: linkedAt}
}

func validateRegistration(reg Registration) string {
	switch {
	case strings.TrimSpace(reg.Name) == "":
		return "Name is required"
	case !strings.Contains(reg.Email, "@"):
		return "A valid email is required"
	case len(reg.Password) < 6:
		return "Password must be at least 6 characters"
	}
	return ""
}

// sessionResponse issues tokens for a and writes {access_token, refresh_token, <kind>}.
func (s *Server) sessionResponse(w http.ResponseWriter, kind principal.Kind, a *account, status int) {
	access, err := s.tokens.generate(kind.Name, a.ID, tokenAccess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "issuing token")
		return
	}
	refresh, err := s.tokens.generate(kind.Name, a.ID, tokenRefresh)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "issuing token")
		return
	}

	writeData(w, status, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		kind.Name:       principalView(kind, a),
	})
}

func (s *Server) handleRegister(kind principal.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg Registration
		if !decodeBody(w, r, &reg) {
			return
		}
		if msg := validateRegistration(reg); msg != "" {
			writeError(w, http.StatusBadRequest, CodeValidation, msg)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidation, "Invalid password")
			return
		}

		s.mu.Lock()
		a, err := s.dirs[kind.Name].add(accountFrom(reg, hash))
		s.mu.Unlock()
		if errors.Is(err, ErrDuplicate) {
			writeError(w, http.StatusConflict, CodeConflict, "Email or CNPJ already registered")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}

		s.logger.Info("account registered", "kind", kind.Name, "account_id", a.ID)
		s.sessionResponse(w, kind, a, http.StatusCreated)
	}
}

func (s *Server) handleLogin(kind principal.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds principal.Credentials
		if !decodeBody(w, r, &creds) {
			return
		}

		s.mu.Lock()
		a, err := s.dirs[kind.Name].byLogin(creds.Email)
		var snapshot account
		if err == nil {
			snapshot = *a
		}
		s.mu.Unlock()

		if err != nil || bcrypt.CompareHashAndPassword(snapshot.PasswordHash, []byte(creds.Password)) != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid credentials")
			return
		}
		if !snapshot.IsActive {
			writeError(w, http.StatusForbidden, CodeForbidden, "Account is inactive")
			return
		}

		s.sessionResponse(w, kind, &snapshot, http.StatusOK)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	s.tokens.revoke(c.TokenID, c.Expires)
	writeMessage(w, "Logout realizado com sucesso")
}

func (s *Server) handleProfile(kind principal.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())

		s.mu.Lock()
		defer s.mu.Unlock()

		a, err := s.dirs[kind.Name].get(c.AccountID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Token inválido")
			return
		}
		writeData(w, http.StatusOK, principalView(kind, a))
	}
}

func (s *Server) handleUsers(kind principal.Kind, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())

		s.mu.Lock()
		defer s.mu.Unlock()

		members := s.dirs[kind.Name].users(c.AccountID, status)
		out := make([]any, 0, len(members))
		for _, m := range members {
			out = append(out, memberView(kind, m))
		}
		writeData(w, http.StatusOK, out)
	}
}

func (s *Server) handleToggle(kind principal.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())

		s.mu.Lock()
		defer s.mu.Unlock()

		m, err := s.dirs[kind.Name].toggle(c.AccountID, chi.URLParam(r, "id"))
		if err != nil {
			writeDirectoryError(w, err)
			return
		}
		writeData(w, http.StatusOK, memberView(kind, m))
	}
}

func (s *Server) handleApprove(kind principal.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())

		s.mu.Lock()
		defer s.mu.Unlock()

		m, err := s.dirs[kind.Name].approve(c.AccountID, chi.URLParam(r, "id"))
		if err != nil {
			writeDirectoryError(w, err)
			return
		}
		writeData(w, http.StatusOK, memberView(kind, m))
	}
}

func (s *Server) handleRemove(kind principal.Kind, pendingOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.dirs[kind.Name].remove(c.AccountID, chi.URLParam(r, "id"), pendingOnly); err != nil {
			writeDirectoryError(w, err)
			return
		}
		if pendingOnly {
			writeMessage(w, "Usuário rejeitado")
			return
		}
		writeMessage(w, "Usuário removido")
	}
}

func (s *Server) handleStats(kind principal.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())

		s.mu.Lock()
		stats := s.dirs[kind.Name].stats(c.AccountID)
		s.mu.Unlock()

		if kind == principal.GymKind {
			writeData(w, http.StatusOK, principal.GymStats{
				TotalUsers:    stats.TotalUsers,
				ActiveUsers:   stats.ActiveUsers,
				InactiveUsers: stats.InactiveUsers,
			})
			return
		}
		writeData(w, http.StatusOK, stats)
	}
}

func (s *Server) handlePlans(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]principal.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		if p.IsActive {
			active = append(active, p)
		}
	}
	writeData(w, http.StatusOK, active)
}

func writeDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "User not found")
	case errors.Is(err, ErrInvalidStatus):
		writeError(w, http.StatusConflict, CodeInvalidStatus, "Operation not allowed for the user's current status")
	default:
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}
