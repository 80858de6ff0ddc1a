// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"context"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/adapter"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/config"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/crypto"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/settings"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// Services aggregates the sync engines and supporting services wired for the
// configured sync mode.
type Services struct {
	BackupService BackupService
	MergeService  MergeService
	StatusService StatusService
	SyncJob       SyncJob

	unsubscribe func()
}

// NewServices wires the engines over the local store and remote adapter for
// the given device actor. The change feed subscription depends on the mode:
// merge mode queues every foreign change for the next cycle and triggers a
// coalesced sync; overwrite mode does nothing automatically — backup stays
// an explicit user action.
func NewServices(cfg *config.ClientConfig, store settings.Store, meta settings.MetaStore, items adapter.ItemStore, actor models.DeviceActor, log *logger.Logger) *Services {
	var cipher crypto.PayloadCipher
	if cfg.App.BackupPassphrase != "" {
		cipher = crypto.NewPayloadCipher(cfg.App.BackupPassphrase)
	}

	status := NewStatusService(log)
	backup := NewBackupService(store, items, cipher, status, log, actor.ID)
	merge := NewMergeService(store, meta, items, cipher, status, log, actor.ID)

	svcs := &Services{
		BackupService: backup,
		MergeService:  merge,
		StatusService: status,
	}

	if cfg.Workers.SyncMode == config.SyncModeMerge {
		svcs.SyncJob = NewSyncJob(func(ctx context.Context, trigger models.Trigger) error {
			_, err := merge.Sync(ctx, trigger)
			return err
		})
		svcs.unsubscribe = store.Subscribe(func(ev settings.ChangeEvent) {
			if ev.SelfOriginated {
				return
			}
			merge.NotifyChange(ev.Category)
			go func() {
				_, _ = merge.Sync(context.Background(), models.TriggerChange)
			}()
		})
	}

	return svcs
}

// Close releases the change feed subscription and stops the background job.
func (s *Services) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.SyncJob != nil {
		s.SyncJob.Stop()
	}
}
