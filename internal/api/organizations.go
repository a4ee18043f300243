// ABOUTME: Organization backend endpoints: authentication, linked users, approvals and stats
// ABOUTME: Thin passthrough wrappers over the transport

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/2389/principal-session/internal/principal"
)

// OrganizationsAPI wraps the /organizations endpoints.
type OrganizationsAPI struct {
	*Client[principal.Organization, principal.RegisterOrganizationData]
}

// NewOrganizationsAPI creates an OrganizationsAPI over transport.
func NewOrganizationsAPI(transport Transport) *OrganizationsAPI {
	return &OrganizationsAPI{
		Client: NewClient[principal.Organization, principal.RegisterOrganizationData](transport, principal.OrganizationKind),
	}
}

// Users lists users linked to the organization.
func (o *OrganizationsAPI) Users(ctx context.Context) ([]principal.OrganizationUser, error) {
	return o.list(ctx, o.kind.Path("users"))
}

// ToggleUserStatus flips a linked user between active and inactive.
func (o *OrganizationsAPI) ToggleUserStatus(ctx context.Context, userID int64) (*principal.OrganizationUser, error) {
	path := o.kind.Path("users", strconv.FormatInt(userID, 10), "toggle")
	return decode[principal.OrganizationUser](o.transport.Do(ctx, http.MethodPatch, path, nil))
}

// RemoveUser unlinks a user from the organization.
func (o *OrganizationsAPI) RemoveUser(ctx context.Context, userID int64) error {
	path := o.kind.Path("users", strconv.FormatInt(userID, 10))
	return ack(o.transport.Do(ctx, http.MethodDelete, path, nil))
}

// Stats returns the organization's user statistics.
func (o *OrganizationsAPI) Stats(ctx context.Context) (*principal.OrganizationStats, error) {
	return decode[principal.OrganizationStats](o.transport.Do(ctx, http.MethodGet, o.kind.Path("stats"), nil))
}

// PendingUsers lists users waiting for approval.
func (o *OrganizationsAPI) PendingUsers(ctx context.Context) ([]principal.OrganizationUser, error) {
	return o.list(ctx, o.kind.Path("users", "pending"))
}

// ApproveUser accepts a pending user.
func (o *OrganizationsAPI) ApproveUser(ctx context.Context, userID int64) (*principal.OrganizationUser, error) {
	path := o.kind.Path("users", strconv.FormatInt(userID, 10), "approve")
	return decode[principal.OrganizationUser](o.transport.Do(ctx, http.MethodPatch, path, nil))
}

// RejectUser declines a pending user.
func (o *OrganizationsAPI) RejectUser(ctx context.Context, userID int64) error {
	path := o.kind.Path("users", strconv.FormatInt(userID, 10), "reject")
	return ack(o.transport.Do(ctx, http.MethodDelete, path, nil))
}

func (o *OrganizationsAPI) list(ctx context.Context, path string) ([]principal.OrganizationUser, error) {
	users, err := decode[[]principal.OrganizationUser](o.transport.Do(ctx, http.MethodGet, path, nil))
	if err != nil {
		return nil, err
	}
	return *users, nil
}
