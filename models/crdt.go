// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package models

import "encoding/json"

// CategoryEntry is one category's slot in the replicated settings document
// used by the merge protocol. Scalar/object categories carry their whole
// value and are resolved last-writer-wins; list categories carry per-element
// entries so concurrent insertions from different devices are both retained.
type CategoryEntry struct {
	// Value holds the category value for non-list categories.
	Value json.RawMessage `json:"value,omitempty"`

	// Elements holds the per-element entries for list categories.
	Elements []ListElement `json:"elements,omitempty"`

	// List reports which of the two representations is in use.
	List bool `json:"list,omitempty"`

	// Clock is the Lamport timestamp of the write that produced this
	// entry (for list categories: the latest element write).
	Clock int64 `json:"clock"`

	// Actor is the device that produced the write. Ties on Clock are
	// broken by comparing Actor lexicographically, so every replica
	// resolves the same winner.
	Actor string `json:"actor"`
}

// ListElement is one element of a list category, tagged for merge.
type ListElement struct {
	// Key identifies the element across devices. Elements that declare
	// an "id" field use it; otherwise the key is derived from content.
	Key string `json:"key"`

	Value   json.RawMessage `json:"value"`
	Clock   int64           `json:"clock"`
	Actor   string          `json:"actor"`
	Deleted bool            `json:"deleted,omitempty"`
}

// NewerThan reports whether e supersedes other under last-writer-wins
// ordering: higher Clock wins, equal Clocks fall back to Actor comparison.
func (e CategoryEntry) NewerThan(other CategoryEntry) bool {
	if e.Clock != other.Clock {
		return e.Clock > other.Clock
	}
	return e.Actor > other.Actor
}

// NewerThan is the element-level analogue of [CategoryEntry.NewerThan].
func (e ListElement) NewerThan(other ListElement) bool {
	if e.Clock != other.Clock {
		return e.Clock > other.Clock
	}
	return e.Actor > other.Actor
}
