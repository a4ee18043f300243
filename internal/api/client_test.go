// ABOUTME: Tests for the generic principal client and management wrappers
// ABOUTME: Covers session decoding, error passthrough and endpoint paths

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/principal-session/internal/principal"
)

var testGym = principal.Gym{
	ID:              1,
	Name:            "Iron Temple",
	CNPJ:            "12.345.678/0001-90",
	Email:           "owner@irontemple.com",
	Phone:           "+55 11 99999-0000",
	Address:         "Rua A, 100",
	ResponsibleName: "Ana",
	IsActive:        true,
}

func TestClient_LoginDecodesSession(t *testing.T) {
	ft := newFakeTransport()
	ft.on(http.MethodPost, "/gyms/auth/login", ok(map[string]any{
		"access_token":  "tok123",
		"refresh_token": "ref456",
		"gym":           testGym,
	}))

	gyms := NewGymsAPI(ft)
	creds := principal.Credentials{Email: "owner@irontemple.com", Password: "x"}

	s, err := gyms.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, "tok123", s.AccessToken)
	assert.Equal(t, "ref456", s.RefreshToken)
	assert.Equal(t, testGym, s.Principal)

	// Payload passed unchanged
	assert.Equal(t, creds, ft.lastCall().Body)
}

func TestClient_RegisterUsesKindField(t *testing.T) {
	ft := newFakeTransport()
	org := principal.Organization{ID: 7, Name: "Acme"}
	ft.on(http.MethodPost, "/organizations/auth/register", ok(map[string]any{
		"access_token": "org-tok",
		"organization": org,
	}))

	orgs := NewOrganizationsAPI(ft)
	s, err := orgs.Register(context.Background(), principal.RegisterOrganizationData{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "org-tok", s.AccessToken)
	assert.Equal(t, org, s.Principal)
}

func TestClient_SessionWithoutTokenIsNotAnError(t *testing.T) {
	ft := newFakeTransport()
	ft.on(http.MethodPost, "/gyms/auth/register", ok(map[string]any{"gym": testGym}))

	s, err := NewGymsAPI(ft).Register(context.Background(), principal.RegisterGymData{})
	require.NoError(t, err)
	assert.Empty(t, s.AccessToken)
	assert.Equal(t, testGym, s.Principal)
}

func TestClient_SessionMissingPrincipal(t *testing.T) {
	ft := newFakeTransport()
	// A gym session decoded with the organization descriptor has no "organization" field
	ft.on(http.MethodPost, "/organizations/auth/login", ok(map[string]any{
		"access_token": "tok",
		"gym":          testGym,
	}))

	_, err := NewOrganizationsAPI(ft).Login(context.Background(), principal.Credentials{})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, CodeDecodeError, apiErr.Code)
}

func TestClient_BackendErrorPassesThrough(t *testing.T) {
	ft := newFakeTransport()
	ft.on(http.MethodPost, "/gyms/auth/login", Failure("AUTH_401", "Invalid credentials"))

	_, err := NewGymsAPI(ft).Login(context.Background(), principal.Credentials{Email: "a@b.com", Password: "x"})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "AUTH_401", apiErr.Code)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestClient_SuccessWithoutDataIsFailure(t *testing.T) {
	ft := newFakeTransport()
	ft.on(http.MethodGet, "/gyms/profile", Envelope{Success: true})

	_, err := NewGymsAPI(ft).GetProfile(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, CodeEmptyResponse, apiErr.Code)
	assert.Empty(t, apiErr.Message)
}

func TestClient_LogoutAndProfile(t *testing.T) {
	ft := newFakeTransport()
	ft.on(http.MethodPost, "/gyms/auth/logout", Envelope{Success: true})
	ft.on(http.MethodGet, "/gyms/profile", ok(testGym))

	gyms := NewGymsAPI(ft)
	require.NoError(t, gyms.Logout(context.Background()))
	assert.Nil(t, ft.lastCall().Body)

	g, err := gyms.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testGym, *g)
}

func TestGymsAPI_ManagementPaths(t *testing.T) {
	ft := newFakeTransport()
	user := principal.GymUser{ID: "u/1", FullName: "Bia", Status: principal.UserStatusInactive}
	ft.on(http.MethodGet, "/gyms/users", ok([]principal.GymUser{user}))
	ft.on(http.MethodPatch, "/gyms/users/u%2F1/toggle", ok(user))
	ft.on(http.MethodDelete, "/gyms/users/u%2F1", ok(principal.Message{Message: "removed"}))
	ft.on(http.MethodGet, "/gyms/stats", ok(principal.GymStats{TotalUsers: 1, InactiveUsers: 1}))

	gyms := NewGymsAPI(ft)
	ctx := context.Background()

	users, err := gyms.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []principal.GymUser{user}, users)

	toggled, err := gyms.ToggleUserStatus(ctx, "u/1")
	require.NoError(t, err)
	assert.Equal(t, user, *toggled)

	require.NoError(t, gyms.RemoveUser(ctx, "u/1"))

	stats, err := gyms.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
}

func TestOrganizationsAPI_ApprovalPaths(t *testing.T) {
	ft := newFakeTransport()
	pending := principal.OrganizationUser{ID: 42, Status: principal.UserStatusPending}
	approved := pending
	approved.Status = principal.UserStatusActive

	ft.on(http.MethodGet, "/organizations/users/pending", ok([]principal.OrganizationUser{pending}))
	ft.on(http.MethodPatch, "/organizations/users/42/approve", ok(approved))
	ft.on(http.MethodDelete, "/organizations/users/42/reject", ok(principal.Message{Message: "rejected"}))

	orgs := NewOrganizationsAPI(ft)
	ctx := context.Background()

	list, err := orgs.PendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	u, err := orgs.ApproveUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, principal.UserStatusActive, u.Status)

	require.NoError(t, orgs.RejectUser(ctx, 42))
	assert.Equal(t, "/organizations/users/42/reject", ft.lastCall().Path)
}

func TestPlansAPI_ActivePlans(t *testing.T) {
	ft := newFakeTransport()
	ft.on(http.MethodGet, "/plans", ok([]principal.Plan{{ID: 1, Name: "Basic", IsActive: true}}))

	plans, err := NewPlansAPI(ft).ActivePlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Basic", plans[0].Name)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "AUTH_401: Invalid credentials", (&Error{Code: "AUTH_401", Message: "Invalid credentials"}).Error())
	assert.Equal(t, "EMPTY_RESPONSE", (&Error{Code: CodeEmptyResponse}).Error())
	assert.Equal(t, "boom", (&Error{Message: "boom"}).Error())
}

func TestEnvelope_ErrWithoutErrorObject(t *testing.T) {
	err := Envelope{Success: false}.Err()
	require.NotNil(t, err)
	assert.Equal(t, CodeUnknown, err.Code)
	assert.Nil(t, Envelope{Success: true}.Err())
}
