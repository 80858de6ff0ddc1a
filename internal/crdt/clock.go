// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package crdt implements the replicated settings document used by the merge
// protocol: Lamport-ordered, actor-tagged category entries that converge to
// the same state on every device regardless of merge order.
package crdt

import "sync"

// Clock is a Lamport logical clock. Physical time is never compared across
// devices; ordering comes from the counter, with the actor ID breaking ties.
type Clock struct {
	mu      sync.Mutex
	counter int64
	actor   string
}

// NewClock constructs a clock for the given device actor ID.
func NewClock(actor string) *Clock {
	return &Clock{actor: actor}
}

// Tick advances the clock for a local event and returns the new timestamp.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	return c.counter
}

// Observe folds in a timestamp seen on a remote document:
// counter = max(counter, remote) + 1.
func (c *Clock) Observe(remote int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.counter {
		c.counter = remote
	}
	c.counter++
	return c.counter
}

// Now returns the current timestamp without advancing.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

// Restore sets the counter, used when reloading persisted clock state.
func (c *Clock) Restore(counter int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter > c.counter {
		c.counter = counter
	}
}

// Actor returns the device actor ID the clock stamps writes with.
func (c *Clock) Actor() string {
	return c.actor
}
