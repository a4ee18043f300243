// ABOUTME: Generic session bundle of an access token and the principal it authenticates
// ABOUTME: Shared by the API client and the session state machine

package principal

// Session is proof of authentication bundled with the identity it authenticates.
// The access token is opaque; it is never decoded client-side.
type Session[P any] struct {
	AccessToken  string
	RefreshToken string
	Principal    P
}
