// Package api talks to the gym/organization REST backend.
//
// # Envelope
//
// Every backend response is wrapped in the same envelope:
//
//	{"success": true,  "data": {...}}
//	{"success": false, "error": {"message": "Invalid credentials", "code": "AUTH_401"}}
//
// HTTP status codes carry no meaning beyond what the envelope states. Transport
// failures (connection refused, timeouts, non-JSON bodies) are folded into the
// same shape with the codes NETWORK_ERROR, INVALID_RESPONSE and friends, so
// callers handle one outcome type.
//
// # Layers
//
//   - Transport: one request/response exchange returning an Envelope.
//     HTTPTransport is the production implementation; it injects the bearer
//     token of its principal kind and a fresh X-Request-ID on every request.
//   - Client[P, R]: register, login, logout and profile for one principal kind.
//     Stateless, no retries.
//   - GymsAPI, OrganizationsAPI, PlansAPI: passthrough wrappers for linked-user
//     management, statistics and plans.
//
// Errors returned by Client and the management wrappers are always *Error.
package api
