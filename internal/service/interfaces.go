// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package service hosts the sync engines: the overwrite protocol (explicit
// backup/restore against the remote item store), the merge protocol
// (conflict-free replicated document), the sync status tracker, and the
// background sync job.
package service

import (
	"context"
	"time"

	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// BackupService is the overwrite-protocol engine. Operations are explicit
// and one-directional: backup replaces the whole remote document, restore
// replaces local categories from the remote document, and neither attempts
// to reconcile concurrent edits — the last completed action wins.
type BackupService interface {
	// Backup serializes the full local settings document, splits it into
	// chunks, and replaces the remote chunk set. Chunk items left over from
	// a previously larger document are deleted in the same cycle.
	Backup(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error)

	// Restore downloads the remote chunk set, verifies its integrity, and
	// overwrites local categories with the reassembled document. On any
	// integrity failure it aborts with [ErrRestoreAborted] before touching
	// a single local category. Individual categories that fail validation
	// are skipped (reset to default) without failing the whole restore.
	Restore(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error)

	// Reset writes every category back to its registry default, then runs
	// a full backup so the remote document reflects the reset immediately.
	Reset(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error)
}

// MergeService is the merge-protocol engine: it keeps a replicated settings
// document on the remote store and converges local and remote edits without
// user-visible conflicts.
type MergeService interface {
	// Sync runs one merge cycle: fetch the remote document, merge it with
	// the local one, apply the result locally (echo-suppressed), and
	// upload when the merge produced changes the remote does not have.
	// Concurrent calls coalesce: a cycle already in flight absorbs the
	// trigger and re-runs at most once.
	Sync(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error)

	// NotifyChange records a local category change so the next cycle
	// re-reads it. Called from the settings change feed.
	NotifyChange(category string)
}

// StatusService tracks sync outcomes for UI display. Snapshot is
// side-effect free and safe to call at any frequency.
type StatusService interface {
	Record(outcome models.SyncOutcome)
	Snapshot() models.SyncState

	// MarkBackup, MarkRestore and MarkMerge stamp the operation-specific
	// completion times shown in the status screen.
	MarkBackup(at time.Time)
	MarkRestore(at time.Time)
	MarkMerge(at time.Time)

	// SetNotifier registers the error notification sink. Notifications
	// for the same error class are suppressed within a cooldown window so
	// a flapping network does not spam the user.
	SetNotifier(fn func(models.SyncError))
}

// SyncJob is the periodic background worker driving the configured engine.
type SyncJob interface {
	// Start launches the background goroutine, syncing every interval
	// (default 5 minutes when interval is zero or negative). A previously
	// running job is stopped first.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the goroutine and blocks until it has exited.
	Stop()
}
