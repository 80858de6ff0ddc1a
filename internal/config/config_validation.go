// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Currently a no-op placeholder; the runtime view [ClientConfig] carries the
// meaningful validation rules.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" || cfg.Remote.Token == "" || cfg.Remote.RequestTimeout <= 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Workers.SyncMode != SyncModeOverwrite && cfg.Workers.SyncMode != SyncModeMerge {
		return ErrInvalidWorkerConfigs
	}
	if cfg.Workers.SyncMode == SyncModeMerge && cfg.Workers.SyncInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
