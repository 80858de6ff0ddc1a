// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── env ──────────────────────────────────────────────────────────────────────

func TestParseEnv_PopulatesNestedFields(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "https://notes.example.com")
	t.Setenv("REMOTE_TOKEN", "secret-token")
	t.Setenv("REMOTE_REQUEST_TIMEOUT", "20s")
	t.Setenv("STORAGE_DB_DATABASE_URI", "/tmp/settings.db")
	t.Setenv("WORKERS_SYNC_MODE", "merge")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "https://notes.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, "secret-token", cfg.Remote.Token)
	assert.Equal(t, 20*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "/tmp/settings.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "merge", cfg.Workers.SyncMode)
}

// ── json ─────────────────────────────────────────────────────────────────────

func TestParseJSON_ReadsDurationsAndStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	body := `{
		"remote": {"base_url": "https://n.example.com", "token": "tok", "request_timeout": "30s"},
		"storage": {"db": {"dsn": "local.db"}},
		"workers": {"sync_interval": "10m", "sync_mode": "overwrite"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "https://n.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "local.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 10*time.Minute, cfg.Workers.SyncInterval)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON("/does/not/exist.json")
	assert.Error(t, err)
}

func TestDuration_UnmarshalVariants(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"90s"`)))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	require.NoError(t, d.UnmarshalJSON([]byte(`1000000000`)))
	assert.Equal(t, time.Second, time.Duration(d))

	assert.Error(t, d.UnmarshalJSON([]byte(`"not-a-duration"`)))
}

// ── client view ──────────────────────────────────────────────────────────────

func validClientConfig() *ClientConfig {
	return &ClientConfig{
		Remote: ClientRemote{
			BaseURL:        "https://n.example.com",
			Token:          "tok",
			RequestTimeout: 15 * time.Second,
		},
		Storage: ClientStorage{DB: ClientDB{DSN: "settings.db"}},
		Workers: ClientWorkers{SyncInterval: 5 * time.Minute, SyncMode: SyncModeOverwrite},
	}
}

func TestClientConfig_Validate_OK(t *testing.T) {
	require.NoError(t, validClientConfig().validate())
}

func TestClientConfig_Validate_MissingDSN(t *testing.T) {
	cfg := validClientConfig()
	cfg.Storage.DB.DSN = ""
	assert.ErrorIs(t, cfg.validate(), ErrInvalidStorageConfigs)
}

func TestClientConfig_Validate_MissingRemote(t *testing.T) {
	cfg := validClientConfig()
	cfg.Remote.Token = ""
	assert.ErrorIs(t, cfg.validate(), ErrInvalidRemoteConfigs)
}

func TestClientConfig_Validate_UnknownMode(t *testing.T) {
	cfg := validClientConfig()
	cfg.Workers.SyncMode = "majority-vote"
	assert.ErrorIs(t, cfg.validate(), ErrInvalidWorkerConfigs)
}

func TestClientConfig_ApplyDefaults(t *testing.T) {
	cfg := &ClientConfig{}
	cfg.applyDefaults()

	assert.Equal(t, 15*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, SyncModeOverwrite, cfg.Workers.SyncMode)
	assert.Equal(t, 5*time.Minute, cfg.Workers.SyncInterval)
}
