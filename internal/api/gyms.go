// ABOUTME: Gym backend endpoints: authentication plus linked-user management and stats
// ABOUTME: Thin passthrough wrappers over the transport

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/2389/principal-session/internal/principal"
)

// GymsAPI wraps the /gyms endpoints.
type GymsAPI struct {
	*Client[principal.Gym, principal.RegisterGymData]
}

// NewGymsAPI creates a GymsAPI over transport.
func NewGymsAPI(transport Transport) *GymsAPI {
	return &GymsAPI{Client: NewClient[principal.Gym, principal.RegisterGymData](transport, principal.GymKind)}
}

// Users lists users linked to the gym.
func (g *GymsAPI) Users(ctx context.Context) ([]principal.GymUser, error) {
	users, err := decode[[]principal.GymUser](g.transport.Do(ctx, http.MethodGet, g.kind.Path("users"), nil))
	if err != nil {
		return nil, err
	}
	return *users, nil
}

// ToggleUserStatus flips a linked user between active and inactive.
func (g *GymsAPI) ToggleUserStatus(ctx context.Context, userID string) (*principal.GymUser, error) {
	path := g.kind.Path("users", url.PathEscape(userID), "toggle")
	return decode[principal.GymUser](g.transport.Do(ctx, http.MethodPatch, path, nil))
}

// RemoveUser unlinks a user from the gym.
func (g *GymsAPI) RemoveUser(ctx context.Context, userID string) error {
	return ack(g.transport.Do(ctx, http.MethodDelete, g.kind.Path("users", url.PathEscape(userID)), nil))
}

// Stats returns the gym's user statistics.
func (g *GymsAPI) Stats(ctx context.Context) (*principal.GymStats, error) {
	return decode[principal.GymStats](g.transport.Do(ctx, http.MethodGet, g.kind.Path("stats"), nil))
}
