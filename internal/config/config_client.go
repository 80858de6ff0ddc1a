package config

import (
	"fmt"
	"time"
)

// SyncMode selects which sync protocol the engine runs.
const (
	// SyncModeOverwrite is the manual protocol: explicit backup/restore
	// with whole-document overwrite semantics. This is the default.
	SyncModeOverwrite = "overwrite"

	// SyncModeMerge is the conflict-free protocol: automatic periodic
	// cycles with per-category last-writer-wins merge.
	SyncModeMerge = "merge"
)

// ClientApp holds application-level settings derived from the shared
// structured config.
type ClientApp struct {
	// BackupPassphrase enables payload encryption when non-empty.
	BackupPassphrase string
	// Version is the running application version.
	Version string
}

// ClientRemote holds network settings used by the remote store adapter.
type ClientRemote struct {
	// BaseURL is the note-service API root.
	BaseURL string
	// Token is the bearer token for the note service.
	Token string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database settings.
type ClientDB struct {
	// DSN is the SQLite file path for the local settings store.
	DSN string
}

// ClientStorage groups local storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the merge sync job runs.
	SyncInterval time.Duration
	// SyncMode is "overwrite" or "merge".
	SyncMode string
}

// ClientConfig is the top-level runtime configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level settings.
	App ClientApp
	// Remote contains note-service addresses and timeouts.
	Remote ClientRemote
	// Storage contains local storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates the runtime config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps the fields
// relevant to the client runtime, applies defaults, and validates the
// resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			BackupPassphrase: cfg.App.BackupPassphrase,
			Version:          cfg.App.Version,
		},
		Remote: ClientRemote{
			BaseURL:        cfg.Remote.BaseURL,
			Token:          cfg.Remote.Token,
			RequestTimeout: cfg.Remote.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			SyncInterval: cfg.Workers.SyncInterval,
			SyncMode:     cfg.Workers.SyncMode,
		},
	}

	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = 15 * time.Second
	}
	if cfg.Workers.SyncMode == "" {
		cfg.Workers.SyncMode = SyncModeOverwrite
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = 5 * time.Minute
	}
}
