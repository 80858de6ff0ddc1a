// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for nenya-sync.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the optional backup
	// passphrase and the application version.
	App App `envPrefix:"APP_"`

	// Remote holds the note-service endpoint and credentials used by the
	// remote item store adapter.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds configuration for the local settings database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds configuration for the background sync job.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// BackupPassphrase, when non-empty, enables payload encryption: the
	// serialized settings document is sealed with a key derived from this
	// passphrase before chunking. All devices must share the passphrase.
	// Env: APP_BACKUP_PASSPHRASE
	BackupPassphrase string `env:"BACKUP_PASSPHRASE"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Remote holds the note-service connection settings.
type Remote struct {
	// BaseURL is the note-service API root (e.g. "https://api.example.com").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Token is the bearer token used to authenticate against the service.
	// Env: REMOTE_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout is the maximum duration for one outbound request
	// (e.g. "15s"). Every remote operation is bounded by it.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for local persistence.
type Storage struct {
	// DB holds the local settings database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path used for the local settings store
	// (e.g. "~/.nenya-sync/settings.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Workers holds background job settings.
type Workers struct {
	// SyncInterval defines how often the merge-protocol sync job runs.
	// Ignored in overwrite mode, which has no automatic triggers.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// SyncMode selects the sync protocol: "overwrite" (default) or "merge".
	// Env: WORKERS_SYNC_MODE
	SyncMode string `env:"SYNC_MODE"`
}

// GetStructuredConfig loads and merges configuration from all sources in
// priority order: environment variables first, then command-line flags, then
// the optional JSON file referenced by either of the former.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
