// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package settings is the local settings store adapter: the single source of
// truth for the current device's configuration categories.
//
// The category registry is the authoritative enumeration of what counts as
// configuration. Other components never hardcode category names; they
// iterate the registry. Every write — whether from the UI or from the sync
// engine applying remote state — goes through the same WriteCategory entry
// point so echo suppression is uniformly applied.
package settings
