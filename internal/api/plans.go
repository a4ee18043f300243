// ABOUTME: Plans endpoint wrapper
// ABOUTME: Lists the active subscription plans

package api

import (
	"context"
	"net/http"

	"github.com/2389/principal-session/internal/principal"
)

// PlansAPI wraps the /plans endpoint.
type PlansAPI struct {
	transport Transport
}

// NewPlansAPI creates a PlansAPI over transport.
func NewPlansAPI(transport Transport) *PlansAPI {
	return &PlansAPI{transport: transport}
}

// ActivePlans lists all active plans.
func (p *PlansAPI) ActivePlans(ctx context.Context) ([]principal.Plan, error) {
	plans, err := decode[[]principal.Plan](p.transport.Do(ctx, http.MethodGet, "/plans", nil))
	if err != nil {
		return nil, err
	}
	return *plans, nil
}
