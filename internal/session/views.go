// ABOUTME: Derived read-only projections of the session container
// ABOUTME: Snapshot accessors plus memoized change-only watch channels

package session

import "context"

// Views projects a container for presentation code.
type Views[P any] struct {
	c *Container[P]
}

// NewViews wraps c.
func NewViews[P any](c *Container[P]) *Views[P] {
	return &Views[P]{c: c}
}

// CurrentPrincipal returns the authenticated principal, or nil.
func (v *Views[P]) CurrentPrincipal() *P {
	return v.c.Snapshot().Principal
}

// IsAuthenticated reports whether a session is present.
func (v *Views[P]) IsAuthenticated() bool {
	return v.c.Snapshot().Session != nil
}

// IsLoading reports whether an action is in flight.
func (v *Views[P]) IsLoading() bool {
	return v.c.Snapshot().Loading
}

// AuthError returns the current error message, or "".
func (v *Views[P]) AuthError() string {
	return v.c.Snapshot().Error
}

// WatchPrincipal emits the current principal and then every change of it.
func (v *Views[P]) WatchPrincipal(ctx context.Context) <-chan *P {
	return Derive(ctx, v.c, func(s State[P]) *P { return s.Principal })
}

// WatchAuthenticated emits IsAuthenticated and then every change of it.
func (v *Views[P]) WatchAuthenticated(ctx context.Context) <-chan bool {
	return Derive(ctx, v.c, func(s State[P]) bool { return s.Session != nil })
}

// WatchLoading emits IsLoading and then every change of it.
func (v *Views[P]) WatchLoading(ctx context.Context) <-chan bool {
	return Derive(ctx, v.c, func(s State[P]) bool { return s.Loading })
}

// WatchError emits AuthError and then every change of it.
func (v *Views[P]) WatchError(ctx context.Context) <-chan string {
	return Derive(ctx, v.c, func(s State[P]) string { return s.Error })
}

// Derive subscribes to c and emits project(state) whenever the projected value
// differs from the previous one. The channel closes when ctx is cancelled or
// the container is closed.
func Derive[P any, V comparable](ctx context.Context, c *Container[P], project func(State[P]) V) <-chan V {
	states, _ := c.Subscribe(ctx)
	out := make(chan V)

	go func() {
		defer close(out)

		var last V
		first := true
		for s := range states {
			val := project(s)
			if !first && val == last {
				continue
			}
			first = false
			last = val

			select {
			case out <- val:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
