// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package models

import "time"

// DeviceActor identifies one installation of the application. The ID is
// generated once, persisted locally, and never changes for the lifetime of
// the installation. It is attached to every outbound sync write: the merge
// protocol uses it to break ties between concurrent edits, and the manual
// protocol records it for diagnostics.
type DeviceActor struct {
	// ID is a stable identifier of the form "<platform>-<uuid>", e.g.
	// "linux-019503a7-…". The platform tag is informational; uniqueness
	// comes from the UUID part.
	ID string `json:"id"`

	// CreatedAt records when the identifier was first generated.
	CreatedAt time.Time `json:"created_at"`
}
