// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package models

import "time"

// Trigger names the reason a sync cycle started.
type Trigger string

const (
	TriggerManual    Trigger = "manual"    // explicit user action
	TriggerTimer     Trigger = "timer"     // periodic background job
	TriggerChange    Trigger = "change"    // local settings mutation
	TriggerLifecycle Trigger = "lifecycle" // app start/stop
)

// SyncOutcome is the record of one completed (or failed) sync cycle, fed to
// the status tracker.
type SyncOutcome struct {
	Trigger    Trigger   `json:"trigger"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Applied    int       `json:"applied"`    // categories written locally
	Uploaded   int       `json:"uploaded"`   // categories written remotely
	Skipped    int       `json:"skipped"`    // categories rejected by validation
	ChunkCount int       `json:"chunk_count"`
}

// SyncError is the last recorded failure, kept for UI display.
type SyncError struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// SyncState is the read model exposed to the UI. It is local diagnostic
// state only and is never persisted remotely.
type SyncState struct {
	LastBackupAt  time.Time  `json:"last_backup_at"`
	LastRestoreAt time.Time  `json:"last_restore_at"`
	LastMergeAt   time.Time  `json:"last_merge_at"`
	LastError     *SyncError `json:"last_error,omitempty"`
	Applied       int        `json:"applied"`
	Uploaded      int        `json:"uploaded"`
	Skipped       int        `json:"skipped"`
	ChunkCount    int        `json:"chunk_count"`
}
