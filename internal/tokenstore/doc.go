// Package tokenstore persists the bearer token that outlives the in-memory
// session state across application restarts.
//
// # Architecture
//
// A Backend is a durable string key-value holder. Three implementations exist:
//
//   - MemoryBackend: process-local map, for tests and throwaway sessions
//   - FileBackend: one 0600 file per key under a directory
//     (default $XDG_CONFIG_HOME/principal-session)
//   - SQLiteBackend: a tokens table in a SQLite database (modernc.org/sqlite)
//
// A Store binds a Backend to one principal kind's storage key and exposes the
// get/set/clear contract the session manager relies on:
//
//	store := tokenstore.New(backend, principal.GymKind.TokenKey)
//	tok, err := store.Get(ctx)   // "" when no token is stored
//	err = store.Set(ctx, "tok")  // overwrite
//	err = store.Set(ctx, "")     // remove
//
// Tokens are opaque: no expiry, no validation, no decoding.
//
// # OAuth2 Integration
//
// Store implements oauth2.TokenSource. The API transport reads each request's
// bearer token through it; ErrNoToken means the request goes out without an
// Authorization header. The refresh token rides along in oauth2.Token.
package tokenstore
