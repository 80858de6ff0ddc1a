// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"strings"
	"sync"
	"time"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// NotifyCooldown is the minimum gap between two error notifications of the
// same error class.
const NotifyCooldown = 5 * time.Minute

type statusService struct {
	logger *logger.Logger

	mu           sync.RWMutex
	state        models.SyncState
	notifier     func(models.SyncError)
	lastNotified map[string]time.Time // error class -> last notification

	now func() time.Time
}

// NewStatusService constructs the sync status tracker.
func NewStatusService(log *logger.Logger) StatusService {
	return &statusService{
		logger:       log,
		lastNotified: make(map[string]time.Time),
		now:          time.Now,
	}
}

func (s *statusService) SetNotifier(fn func(models.SyncError)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = fn
}

func (s *statusService) Record(outcome models.SyncOutcome) {
	s.mu.Lock()

	if outcome.OK {
		s.state.Applied = outcome.Applied
		s.state.Uploaded = outcome.Uploaded
		s.state.Skipped = outcome.Skipped
		s.state.ChunkCount = outcome.ChunkCount
		s.state.LastError = nil
	} else {
		s.state.LastError = &models.SyncError{Message: outcome.Error, At: outcome.Timestamp}
	}

	notify := s.shouldNotifyLocked(outcome)
	notifier := s.notifier
	lastError := s.state.LastError
	s.mu.Unlock()

	s.logger.Debug().
		Str("trigger", string(outcome.Trigger)).
		Bool("ok", outcome.OK).
		Int("applied", outcome.Applied).
		Int("uploaded", outcome.Uploaded).
		Int("skipped", outcome.Skipped).
		Int("chunks", outcome.ChunkCount).
		Msg("sync outcome recorded")

	if notify && notifier != nil && lastError != nil {
		notifier(*lastError)
	}
}

func (s *statusService) MarkBackup(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastBackupAt = at
}

func (s *statusService) MarkRestore(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastRestoreAt = at
}

func (s *statusService) MarkMerge(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastMergeAt = at
}

func (s *statusService) Snapshot() models.SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	if s.state.LastError != nil {
		e := *s.state.LastError
		out.LastError = &e
	}
	return out
}

// shouldNotifyLocked applies the per-error-class cooldown. Caller holds mu.
func (s *statusService) shouldNotifyLocked(outcome models.SyncOutcome) bool {
	if outcome.OK {
		return false
	}

	class := errorClass(outcome.Error)
	now := s.now()
	if last, ok := s.lastNotified[class]; ok && now.Sub(last) < NotifyCooldown {
		return false
	}
	s.lastNotified[class] = now
	return true
}

// errorClass reduces an error message to a coarse class for cooldown
// bucketing: the first wrapped segment is enough to distinguish "network
// error" from "authentication expired" without keying on volatile details.
func errorClass(message string) string {
	if i := strings.IndexByte(message, ':'); i > 0 {
		return message[:i]
	}
	return message
}
