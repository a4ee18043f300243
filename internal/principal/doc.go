// Package principal defines the identities the backend authenticates and the
// descriptors that tell the generic session machinery how to talk about them.
//
// # Principal Kinds
//
// Two kinds exist:
//
//   - Gym: endpoints under /gyms, session field "gym"
//   - Organization: endpoints under /organizations, session field "organization"
//
// A Kind carries everything that differs between them: the endpoint prefix,
// the JSON field holding the principal inside a session payload, the storage
// key for the bearer token and the localized fallback error messages.
//
// # Data Types
//
// Principals (Gym, Organization) are immutable from the client's point of
// view and are always replaced wholesale. Linked users, statistics and plans
// are plain passthrough shapes for the management endpoints.
package principal
