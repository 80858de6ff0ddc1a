// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

func newTestStatus(t *testing.T) (*statusService, *time.Time) {
	t.Helper()
	s := NewStatusService(logger.Nop()).(*statusService)
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }
	return s, &current
}

func TestStatus_RecordSuccessUpdatesCounts(t *testing.T) {
	s, _ := newTestStatus(t)

	s.Record(models.SyncOutcome{
		Trigger: models.TriggerManual, OK: true,
		Applied: 3, Uploaded: 2, Skipped: 1, ChunkCount: 4,
		Timestamp: time.Now(),
	})

	state := s.Snapshot()
	assert.Equal(t, 3, state.Applied)
	assert.Equal(t, 2, state.Uploaded)
	assert.Equal(t, 1, state.Skipped)
	assert.Equal(t, 4, state.ChunkCount)
	assert.Nil(t, state.LastError)
}

func TestStatus_RecordFailureKeepsLastError(t *testing.T) {
	s, _ := newTestStatus(t)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.Record(models.SyncOutcome{Trigger: models.TriggerTimer, OK: false, Error: "network error: dial tcp", Timestamp: at})

	state := s.Snapshot()
	require.NotNil(t, state.LastError)
	assert.Equal(t, "network error: dial tcp", state.LastError.Message)
	assert.Equal(t, at, state.LastError.At)
}

func TestStatus_SuccessClearsLastError(t *testing.T) {
	s, _ := newTestStatus(t)

	s.Record(models.SyncOutcome{OK: false, Error: "boom", Timestamp: time.Now()})
	s.Record(models.SyncOutcome{OK: true, Timestamp: time.Now()})

	assert.Nil(t, s.Snapshot().LastError)
}

func TestStatus_NotifierCooldownPerErrorClass(t *testing.T) {
	s, current := newTestStatus(t)

	var notified []string
	s.SetNotifier(func(e models.SyncError) { notified = append(notified, e.Message) })

	s.Record(models.SyncOutcome{OK: false, Error: "network error: dial tcp 1", Timestamp: *current})
	s.Record(models.SyncOutcome{OK: false, Error: "network error: dial tcp 2", Timestamp: *current})
	assert.Len(t, notified, 1, "same class within cooldown must notify once")

	// a different error class is not suppressed
	s.Record(models.SyncOutcome{OK: false, Error: "authentication expired: token", Timestamp: *current})
	assert.Len(t, notified, 2)

	// after the cooldown the original class fires again
	*current = current.Add(NotifyCooldown + time.Second)
	s.Record(models.SyncOutcome{OK: false, Error: "network error: dial tcp 3", Timestamp: *current})
	assert.Len(t, notified, 3)
}

func TestStatus_SnapshotIsACopy(t *testing.T) {
	s, _ := newTestStatus(t)
	s.Record(models.SyncOutcome{OK: false, Error: "boom", Timestamp: time.Now()})

	snap := s.Snapshot()
	snap.LastError.Message = "mutated"

	assert.Equal(t, "boom", s.Snapshot().LastError.Message)
}

func TestStatus_MarkTimestamps(t *testing.T) {
	s, _ := newTestStatus(t)
	backup := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	restore := backup.Add(time.Hour)
	merge := backup.Add(2 * time.Hour)

	s.MarkBackup(backup)
	s.MarkRestore(restore)
	s.MarkMerge(merge)

	state := s.Snapshot()
	assert.Equal(t, backup, state.LastBackupAt)
	assert.Equal(t, restore, state.LastRestoreAt)
	assert.Equal(t, merge, state.LastMergeAt)
}

func TestErrorClass(t *testing.T) {
	assert.Equal(t, "network error", errorClass("network error: dial tcp 10.0.0.1"))
	assert.Equal(t, "no remote backup found", errorClass("no remote backup found"))
}
