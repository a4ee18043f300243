// Package session owns the client-side authentication state of one principal
// kind and the actions that change it.
//
// # Components
//
//   - Container: the observable {principal, session, loading, error} cell.
//     Every write replaces the whole State; subscribers receive snapshots.
//   - Manager: the actions Register, Login, Logout, CheckSession, ClearError
//     and RefreshProfile. Each is a read-modify-write of the container around
//     one API call.
//   - Views: read-only projections (CurrentPrincipal, IsAuthenticated,
//     IsLoading, AuthError) plus change-only watch channels built with Derive.
//
// # State Machine
//
//	Anonymous ──login/register──▶ Authenticating ──ok──▶ Authenticated
//	                                    │
//	                                    └──fail──▶ AuthenticationFailed
//
// A failed login or register only sets Error; an existing principal/session is
// kept so a failed re-login does not log the user out. CheckSession is the one
// path that treats a failure as logout: a stored token the backend no longer
// accepts is cleared and the state returns to Anonymous without an error string.
// Logout always ends Anonymous with the token cleared, whatever the backend says.
//
// # Racing Actions
//
// Actions that overlap write the same container independently and the last
// write wins. WithStaleResponseGuard opts into a generation counter that drops
// responses belonging to an action superseded by a newer one.
//
// # Subscribers
//
// Subscriber channels hold one pending snapshot. A slow subscriber loses
// intermediate states but always receives the latest one.
package session
