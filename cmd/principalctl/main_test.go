// ABOUTME: Tests for principalctl against an in-process fake backend
// ABOUTME: Each run is a fresh process-like invocation sharing an on-disk token store

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/principal-session/internal/fakebackend"
	"github.com/2389/principal-session/internal/principal"
)

type env struct {
	srv        *fakebackend.Server
	configPath string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	srv := fakebackend.New([]byte("test-secret"), fakebackend.WithBcryptCost(bcrypt.MinCost))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("backend:\n  base_url: %q\nstorage:\n  driver: file\n  path: %q\nlogging:\n  level: error\n",
		ts.URL, filepath.Join(dir, "tokens"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	return &env{srv: srv, configPath: configPath}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"-config", e.configPath}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	e := newEnv(t)
	gymID, err := e.srv.SeedAccount(principal.GymKind, fakebackend.Registration{
		Name: "Iron Temple", CNPJ: "12.345.678/0001-90", Email: "owner@irontemple.com", Password: "hunter22",
	})
	require.NoError(t, err)
	_, err = e.srv.LinkUser(principal.GymKind, gymID, "Alice", "alice@mail.com", principal.UserStatusActive)
	require.NoError(t, err)

	_, err = e.run(t, "whoami")
	require.Error(t, err)

	out, err := e.run(t, "login", "-email", "owner@irontemple.com", "-password", "hunter22")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as owner@irontemple.com")

	out, err = e.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Iron Temple")
	assert.Contains(t, out, "12.345.678/0001-90")

	out, err = e.run(t, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@mail.com")

	out, err = e.run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Active")

	_, err = e.run(t, "logout")
	require.NoError(t, err)

	_, err = e.run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestCLI_WrongPassword(t *testing.T) {
	e := newEnv(t)
	_, err := e.srv.SeedAccount(principal.GymKind, fakebackend.Registration{Name: "G", Email: "owner@irontemple.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = e.run(t, "login", "-email", "owner@irontemple.com", "-password", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestCLI_PasswordFromEnvironment(t *testing.T) {
	e := newEnv(t)
	_, err := e.srv.SeedAccount(principal.GymKind, fakebackend.Registration{Name: "G", Email: "owner@irontemple.com", Password: "hunter22"})
	require.NoError(t, err)

	t.Setenv("PRINCIPAL_PASSWORD", "hunter22")
	_, err = e.run(t, "login", "-email", "owner@irontemple.com")
	require.NoError(t, err)
}

func TestCLI_OrganizationFlow(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "-kind", "organization", "register",
		"-name", "Acme", "-cnpj", "98.765.432/0001-10", "-email", "hr@acme.com", "-password", "hunter22")
	require.NoError(t, err)
	assert.Contains(t, out, `Registered organization "Acme"`)

	userID, err := e.srv.LinkUser(principal.OrganizationKind, 1, "Carol", "carol@acme.com", principal.UserStatusPending)
	require.NoError(t, err)

	out, err = e.run(t, "-kind", "org", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "carol@acme.com")

	out, err = e.run(t, "-kind", "org", "approve", userID)
	require.NoError(t, err)
	assert.Contains(t, out, "Approved Carol")

	// The gym session is independent and still anonymous
	_, err = e.run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestCLI_Errors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"dance"}},
		{"unknown kind", []string{"-kind", "school", "whoami"}},
		{"pending for gyms", []string{"pending"}},
		{"toggle without id", []string{"toggle"}},
		{"non-numeric org id", []string{"-kind", "organization", "approve", "abc"}},
		{"login without email", []string{"login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCLI_Plans(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "plans")
	require.NoError(t, err)
	assert.Contains(t, out, "Premium")
	assert.NotContains(t, out, "Legado")
}

func TestCLI_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Usage: principalctl")
}
