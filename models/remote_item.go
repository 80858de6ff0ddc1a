// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package models

import "time"

// RemoteItem is one note-service item as seen through the remote store
// adapter. The service is treated strictly as a coarse key-value blob store:
// a title used for addressing, a bounded text body, and free-form tags.
type RemoteItem struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// RemoteBodyLimit is the note service's hard ceiling on body length in
// characters. Bodies past this limit are silently truncated by the service
// itself, so every stored chunk must stay at or below it.
const RemoteBodyLimit = 10000
