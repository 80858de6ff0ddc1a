// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import "errors"

var (
	// ErrNoRemoteBackup means restore found no chunk items under the
	// document's title prefix.
	ErrNoRemoteBackup = errors.New("no remote backup found")

	// ErrRestoreAborted means the downloaded chunk set failed an integrity
	// check and no local category was modified.
	ErrRestoreAborted = errors.New("restore aborted, local settings untouched")

	// ErrPassphraseRequired means the remote payload is encrypted and no
	// backup passphrase is configured.
	ErrPassphraseRequired = errors.New("remote payload is encrypted, passphrase required")

	// ErrMalformedRemoteItem means a remote item under the sync prefix does
	// not parse as a chunk (unexpected title or body shape).
	ErrMalformedRemoteItem = errors.New("malformed remote chunk item")
)
