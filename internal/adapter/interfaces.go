// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package adapter talks to the remote note service, repurposed here as a
// coarse key-value item store for settings payloads.
package adapter

import (
	"context"

	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// ItemQuery filters ListItems. Empty fields match everything.
type ItemQuery struct {
	// TitlePrefix matches items whose title starts with the prefix. The
	// sync engine uses it to find every chunk item of a document.
	TitlePrefix string
	// Tag matches items carrying the tag.
	Tag string
}

// ItemStore is the remote item store surface used by the sync engine.
// Implementations must never return partially applied batch results: a batch
// call either reports success for the whole batch or an error.
type ItemStore interface {
	CreateItem(ctx context.Context, item models.RemoteItem) (models.RemoteItem, error)
	UpdateItem(ctx context.Context, item models.RemoteItem) error
	DeleteItem(ctx context.Context, id string) error

	ListItems(ctx context.Context, q ItemQuery) ([]models.RemoteItem, error)

	// BatchGet fetches the given items in one round trip. Unknown IDs are
	// omitted from the result, not an error.
	BatchGet(ctx context.Context, ids []string) ([]models.RemoteItem, error)

	// BatchSet creates or replaces the given items by ID in one round trip.
	BatchSet(ctx context.Context, items []models.RemoteItem) error
}
