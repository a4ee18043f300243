// ABOUTME: Session state value and action result types
// ABOUTME: Defines the phases of the authentication state machine

package session

import "github.com/2389/principal-session/internal/principal"

// State is one principal kind's authentication status.
// Error is empty when there is no error.
type State[P any] struct {
	Principal *P
	Session   *principal.Session[P]
	Loading   bool
	Error     string
}

// Authenticated reports whether a session is present.
func (s State[P]) Authenticated() bool {
	return s.Session != nil
}

// Phase names the state machine position of a State.
type Phase string

// Phase constants
const (
	PhaseAnonymous            Phase = "anonymous"
	PhaseAuthenticating       Phase = "authenticating"
	PhaseAuthenticated        Phase = "authenticated"
	PhaseAuthenticationFailed Phase = "authentication_failed"
)

// Phase derives the state machine phase. Loading wins over error, and error
// wins over an existing session.
func (s State[P]) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseAuthenticating
	case s.Error != "":
		return PhaseAuthenticationFailed
	case s.Session != nil:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// Result is the outcome an action reports to its caller.
type Result struct {
	Success bool
	// Error is the message shown to the user, empty on success.
	Error string
	// Stale is set when the response arrived after a newer action and was
	// discarded (only with WithStaleResponseGuard).
	Stale bool
}
