// Package app wires the principal session client together.
//
// An App owns one token backend shared by both principal kinds. Each kind gets
// its own token store key, its own HTTP transport bound to that store, and its
// own session manager, so gym and organization sessions never interfere.
//
//	cfg, _ := config.LoadOrDefault(config.DefaultPath())
//	a, err := app.New(cfg, app.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	status, _ := a.CheckSessions(ctx) // restore persisted sessions
//	if !status.Gym.Success {
//	    a.Gym.Login(ctx, creds)
//	}
//
// There are no package-level singletons; tests build as many Apps as they need.
package app
