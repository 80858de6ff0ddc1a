package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-remote-address note-service API root URL
//	-token note-service bearer token
//	-d local settings database path
//	-c/-config json file path with configs
//	-passphrase backup encryption passphrase
//	-request-timeout outbound request timeout (e.g., "15s")
//	-sync-interval merge-mode sync interval (e.g., "5m")
//	-sync-mode sync protocol: "overwrite" or "merge"
func ParseFlags() *StructuredConfig {
	var remoteAddress string
	var token string
	var databaseDSN string
	var jsonConfigPath string
	var passphrase string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var syncMode string

	flag.StringVar(&remoteAddress, "remote-address", "", "Note service API root URL")
	flag.StringVar(&token, "token", "", "Note service bearer token")
	flag.StringVar(&databaseDSN, "d", "", "Local settings database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&passphrase, "passphrase", "", "Backup encryption passphrase")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Merge sync interval (e.g., 5m)")
	flag.StringVar(&syncMode, "sync-mode", "", "Sync protocol: overwrite or merge")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			BackupPassphrase: passphrase,
		},
		Remote: Remote{
			BaseURL:        remoteAddress,
			Token:          token,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Workers: Workers{
			SyncInterval: syncInterval,
			SyncMode:     syncMode,
		},
		JSONFilePath: jsonConfigPath,
	}
}
