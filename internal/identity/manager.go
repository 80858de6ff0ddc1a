// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package identity manages the stable per-installation device actor ID.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/settings"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// metaKeyActor is the meta-store key under which the device actor is kept.
const metaKeyActor = "device_actor"

// Manager loads the device actor from local metadata, generating and
// persisting one on first use. The ID must never be regenerated while the
// old record is still readable: a changed actor ID would make every remote
// entry written by this device look foreign to the merge protocol.
type Manager struct {
	meta   settings.MetaStore
	logger *logger.Logger

	newID func() (string, error)
	now   func() time.Time
}

// NewManager constructs the device identity manager over a meta store.
func NewManager(meta settings.MetaStore, log *logger.Logger) *Manager {
	return &Manager{
		meta:   meta,
		logger: log,
		newID:  generateActorID,
		now:    time.Now,
	}
}

// GetOrCreate returns the persisted device actor, creating it atomically on
// first call. A storage failure is returned as-is: callers must not proceed
// with a freshly generated throwaway ID, because writes attributed to it
// would never be recognized as ours again.
func (m *Manager) GetOrCreate(ctx context.Context) (models.DeviceActor, error) {
	raw, err := m.meta.GetMeta(ctx, metaKeyActor)
	switch {
	case err == nil:
		var actor models.DeviceActor
		if uerr := json.Unmarshal([]byte(raw), &actor); uerr == nil && actor.ID != "" {
			return actor, nil
		}
		// unreadable record: regenerate below, same as first run
		m.logger.Warn().Str("raw", raw).Msg("stored device actor is corrupted, regenerating")
	case errors.Is(err, settings.ErrMetaNotFound):
		// first run
	default:
		return models.DeviceActor{}, fmt.Errorf("load device actor: %w", err)
	}

	id, err := m.newID()
	if err != nil {
		return models.DeviceActor{}, fmt.Errorf("generate device actor id: %w", err)
	}

	actor := models.DeviceActor{ID: id, CreatedAt: m.now().UTC()}
	encoded, err := json.Marshal(actor)
	if err != nil {
		return models.DeviceActor{}, fmt.Errorf("encode device actor: %w", err)
	}

	if err = m.meta.SetMeta(ctx, metaKeyActor, string(encoded)); err != nil {
		return models.DeviceActor{}, fmt.Errorf("persist device actor: %w", err)
	}

	m.logger.Info().Str("actor", actor.ID).Msg("generated new device actor")
	return actor, nil
}

func generateActorID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return runtime.GOOS + "-" + id.String(), nil
}
