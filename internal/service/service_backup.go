// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/adapter"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/chunk"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/crypto"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/settings"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// defaultOpTimeout bounds one backup/restore/reset cycle end to end.
const defaultOpTimeout = 60 * time.Second

type backupService struct {
	store   settings.Store
	items   adapter.ItemStore
	cipher  crypto.PayloadCipher // nil when no passphrase configured
	status  StatusService
	logger  *logger.Logger
	actor   string
	timeout time.Duration

	// one overwrite operation at a time; backup and restore racing each
	// other would interleave remote writes with local ones
	mu sync.Mutex

	now func() time.Time
}

// NewBackupService constructs the overwrite-protocol engine. cipher may be
// nil, in which case payloads are stored in plaintext and encrypted remotes
// fail restore with [ErrPassphraseRequired].
func NewBackupService(store settings.Store, items adapter.ItemStore, cipher crypto.PayloadCipher, status StatusService, log *logger.Logger, actor string) BackupService {
	return &backupService{
		store:   store,
		items:   items,
		cipher:  cipher,
		status:  status,
		logger:  log,
		actor:   actor,
		timeout: defaultOpTimeout,
		now:     time.Now,
	}
}

func (s *backupService) Backup(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.backup(ctx, trigger)
	s.record(outcome, err)
	if err == nil {
		s.status.MarkBackup(outcome.Timestamp)
	}
	return outcome, err
}

func (s *backupService) backup(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	outcome := models.SyncOutcome{Trigger: trigger, Timestamp: s.now()}

	doc, err := s.store.ReadAll(ctx)
	if err != nil {
		return outcome, fmt.Errorf("read local settings: %w", err)
	}

	payload, err := doc.Serialize()
	if err != nil {
		return outcome, fmt.Errorf("serialize settings: %w", err)
	}
	if s.cipher != nil {
		if payload, err = s.cipher.Seal(payload); err != nil {
			return outcome, fmt.Errorf("encrypt payload: %w", err)
		}
	}

	// a shrinking document leaves higher-indexed items behind; a later
	// restore would reject the set, so the replace deletes them too
	chunkCount, err := replaceRemoteChunks(ctx, s.items, OverwriteTitlePrefix, s.actor, payload, OverwriteChunkCeiling)
	if err != nil {
		return outcome, err
	}

	outcome.OK = true
	outcome.Uploaded = len(doc)
	outcome.ChunkCount = chunkCount
	s.logger.Info().Str("trigger", string(trigger)).Int("chunks", chunkCount).Msg("backup completed")
	return outcome, nil
}

func (s *backupService) Restore(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.restore(ctx, trigger)
	s.record(outcome, err)
	if err == nil {
		s.status.MarkRestore(outcome.Timestamp)
	}
	return outcome, err
}

func (s *backupService) restore(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	outcome := models.SyncOutcome{Trigger: trigger, Timestamp: s.now()}

	items, err := s.items.ListItems(ctx, adapter.ItemQuery{TitlePrefix: OverwriteTitlePrefix, Tag: SyncTag})
	if err != nil {
		return outcome, fmt.Errorf("list remote chunk items: %w", err)
	}
	if len(items) == 0 {
		return outcome, ErrNoRemoteBackup
	}

	set, err := itemChunks(OverwriteTitlePrefix, items)
	if err != nil {
		return outcome, fmt.Errorf("%w: %v", ErrRestoreAborted, err)
	}

	payload, err := chunk.Join(set)
	if err != nil {
		return outcome, fmt.Errorf("%w: %v", ErrRestoreAborted, err)
	}

	if crypto.IsEncrypted(payload) {
		if s.cipher == nil {
			return outcome, ErrPassphraseRequired
		}
		if payload, err = s.cipher.Open(payload); err != nil {
			return outcome, fmt.Errorf("%w: %v", ErrRestoreAborted, err)
		}
	}

	doc, err := models.ParseSettingsDocument(payload)
	if err != nil {
		return outcome, fmt.Errorf("%w: parse payload: %v", ErrRestoreAborted, err)
	}

	// everything remote is verified; only now may local state change
	normalized, skipped := s.store.Registry().NormalizeDocument(doc)
	for _, name := range s.store.Registry().Names() {
		if err = s.store.WriteCategory(ctx, name, normalized[name], settings.WriteOptions{SuppressEcho: true}); err != nil {
			return outcome, fmt.Errorf("apply category %s: %w", name, err)
		}
		outcome.Applied++
	}
	for _, name := range skipped {
		s.logger.Warn().Str("category", name).Msg("restored value failed validation, reset to default")
	}

	outcome.OK = true
	outcome.Skipped = len(skipped)
	outcome.ChunkCount = len(set)
	s.logger.Info().Str("trigger", string(trigger)).Int("applied", outcome.Applied).Int("skipped", outcome.Skipped).Msg("restore completed")
	return outcome, nil
}

func (s *backupService) Reset(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.reset(ctx, trigger)
	s.record(outcome, err)
	if err == nil {
		s.status.MarkBackup(outcome.Timestamp)
	}
	return outcome, err
}

func (s *backupService) reset(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	outcome := models.SyncOutcome{Trigger: trigger, Timestamp: s.now()}

	for _, cat := range s.store.Registry().All() {
		if err := s.store.WriteCategory(ctx, cat.Name, cat.Default, settings.WriteOptions{SuppressEcho: true}); err != nil {
			return outcome, fmt.Errorf("reset category %s: %w", cat.Name, err)
		}
		outcome.Applied++
	}

	// remote must reflect the reset immediately
	backed, err := s.backup(ctx, trigger)
	if err != nil {
		return outcome, err
	}

	outcome.OK = true
	outcome.Uploaded = backed.Uploaded
	outcome.ChunkCount = backed.ChunkCount
	s.logger.Info().Str("trigger", string(trigger)).Int("categories", outcome.Applied).Msg("settings reset to defaults and backed up")
	return outcome, nil
}

func (s *backupService) record(outcome models.SyncOutcome, err error) {
	if err != nil {
		outcome.OK = false
		outcome.Error = err.Error()
	}
	s.status.Record(outcome)
}

// indexRemoteItems maps existing chunk items to their index for in-place
// updates and collects everything that will not be part of the new set:
// higher-indexed leftovers, duplicates, and items with unparsable titles.
func indexRemoteItems(prefix string, items []models.RemoteItem, newTotal int) (byIndex map[int]string, strays []string) {
	byIndex = make(map[int]string, len(items))
	for _, item := range items {
		index, _, err := parseChunkTitle(prefix, item.Title)
		if err != nil || index < 1 {
			strays = append(strays, item.ID)
			continue
		}
		if _, dup := byIndex[index]; dup || index > newTotal {
			strays = append(strays, item.ID)
			continue
		}
		byIndex[index] = item.ID
	}
	return byIndex, strays
}
