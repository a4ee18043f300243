// ABOUTME: Observable state cell holding one principal kind's session state
// ABOUTME: Whole-object writes fan out snapshots to subscribers with latest-wins buffering

package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Container is the single source of truth for one kind's session state.
type Container[P any] struct {
	mu          sync.RWMutex
	state       State[P]
	subscribers map[string]*subscriber[P]
	closed      bool
	logger      *slog.Logger
}

type subscriber[P any] struct {
	ch   chan State[P]
	done chan struct{} // closed on unsubscribe, stops the ctx watcher
}

// NewContainer creates an empty (Anonymous) container. Pass nil logger for default.
func NewContainer[P any](logger *slog.Logger) *Container[P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Container[P]{
		subscribers: make(map[string]*subscriber[P]),
		logger:      logger.With("component", "session_container"),
	}
}

// Snapshot returns the current state.
func (c *Container[P]) Snapshot() State[P] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Set replaces the state.
func (c *Container[P]) Set(s State[P]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.publishLocked(s)
}

// Update replaces the state with fn(current) atomically and returns the new state.
func (c *Container[P]) Update(fn func(State[P]) State[P]) State[P] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = fn(c.state)
	c.publishLocked(c.state)
	return c.state
}

// Subscribe registers for state changes. The current state is delivered
// first. The channel closes when ctx is cancelled or when Unsubscribe or Close
// removes the subscription.
func (c *Container[P]) Subscribe(ctx context.Context) (<-chan State[P], string) {
	subID := uuid.New().String()
	ch := make(chan State[P], 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, subID
	}
	sub := &subscriber[P]{ch: ch, done: make(chan struct{})}
	c.subscribers[subID] = sub
	ch <- c.state
	c.mu.Unlock()

	c.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		select {
		case <-ctx.Done():
			c.Unsubscribe(subID)
		case <-sub.done:
		}
	}()

	return ch, subID
}

// Unsubscribe removes a subscription and closes its channel.
func (c *Container[P]) Unsubscribe(subID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subscribers[subID]
	if !ok {
		return
	}
	delete(c.subscribers, subID)
	sub.close()

	c.logger.Debug("subscriber removed", "sub_id", subID)
}

// Close closes every subscriber channel. Later writes still update the state.
func (c *Container[P]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subID, sub := range c.subscribers {
		sub.close()
		delete(c.subscribers, subID)
	}
	c.closed = true
}

// publishLocked delivers s to every subscriber, replacing any snapshot the
// subscriber has not read yet. Must be called with mu held.
func (c *Container[P]) publishLocked(s State[P]) {
	for _, sub := range c.subscribers {
		ch := sub.ch
		select {
		case ch <- s:
			continue
		default:
		}

		// Drop the unread snapshot and retry
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (s *subscriber[P]) close() {
	close(s.ch)
	close(s.done)
}
