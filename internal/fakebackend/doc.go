// Package fakebackend is an in-memory HTTP server implementing the gym and
// organization backend API.
//
// It serves the same envelope contract the client expects:
//
//	{"success": true, "data": {...}}
//	{"success": false, "error": {"code": "AUTH_401", "message": "Invalid credentials"}}
//
// Passwords are bcrypt-hashed. Access tokens are HS256 JWTs carrying the
// principal kind, so a gym token is rejected on organization routes. Logout
// revokes the presented token by its ID.
//
// Routes, for {kind} in gyms and organizations:
//
//	POST   /{kind}/auth/register
//	POST   /{kind}/auth/login
//	POST   /{kind}/auth/logout            (bearer)
//	GET    /{kind}/profile                (bearer)
//	GET    /{kind}/users                  (bearer)
//	PATCH  /{kind}/users/{id}/toggle      (bearer)
//	DELETE /{kind}/users/{id}             (bearer)
//	GET    /{kind}/stats                  (bearer)
//	GET    /organizations/users/pending   (bearer)
//	PATCH  /organizations/users/{id}/approve (bearer)
//	DELETE /organizations/users/{id}/reject  (bearer)
//	GET    /plans
//
// Linked users only enter through LinkUser; there is no user-facing signup.
package fakebackend
