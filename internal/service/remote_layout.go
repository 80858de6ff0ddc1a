// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/adapter"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/chunk"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// Remote item layout. One chunk maps to one note item: the body is the raw
// chunk payload (so the store's character ceiling applies to the payload
// exactly), the title carries the addressing, and the checksum travels in a
// tag.
//
//	title: "<prefix> <index>/<total>"
//	tags:  ["nenya-sync", "sha256:<hex>", "actor:<device id>"]
const (
	// OverwriteTitlePrefix addresses the overwrite-protocol document.
	OverwriteTitlePrefix = "nenya-settings"

	// MergeTitlePrefix addresses the merge-protocol replicated document.
	MergeTitlePrefix = "nenya-state"

	// SyncTag marks every item this application owns.
	SyncTag = "nenya-sync"

	// OverwriteChunkCeiling is the overwrite protocol's chunk size. It
	// stays well below [models.RemoteBodyLimit] as a safety margin against
	// server-side counting differences.
	OverwriteChunkCeiling = 8000

	// MergeChunkCeiling is the merge protocol's chunk size, at the store's
	// hard limit.
	MergeChunkCeiling = models.RemoteBodyLimit

	checksumTagPrefix = "sha256:"
	actorTagPrefix    = "actor:"
)

func chunkTitle(prefix string, index, total int) string {
	return fmt.Sprintf("%s %d/%d", prefix, index, total)
}

func parseChunkTitle(prefix, title string) (index, total int, err error) {
	rest, ok := strings.CutPrefix(title, prefix+" ")
	if !ok {
		return 0, 0, fmt.Errorf("%w: title %q lacks prefix %q", ErrMalformedRemoteItem, title, prefix)
	}
	if _, err = fmt.Sscanf(rest, "%d/%d", &index, &total); err != nil {
		return 0, 0, fmt.Errorf("%w: title %q: %v", ErrMalformedRemoteItem, title, err)
	}
	return index, total, nil
}

// chunkItems renders a chunk set as remote items, reusing existing item IDs
// by index so a backup updates items in place instead of churning them.
func chunkItems(set models.ChunkSet, prefix, actor string, existingIDs map[int]string) []models.RemoteItem {
	items := make([]models.RemoteItem, 0, len(set))
	for _, c := range set {
		items = append(items, models.RemoteItem{
			ID:    existingIDs[c.Index],
			Title: chunkTitle(prefix, c.Index, c.Total),
			Body:  c.Payload,
			Tags:  []string{SyncTag, checksumTagPrefix + c.Checksum, actorTagPrefix + actor},
		})
	}
	return items
}

// itemChunks parses remote items back into a chunk set. Malformed items fail
// the whole parse: a half-understood chunk set must never be reassembled.
func itemChunks(prefix string, items []models.RemoteItem) (models.ChunkSet, error) {
	set := make(models.ChunkSet, 0, len(items))
	for _, item := range items {
		index, total, err := parseChunkTitle(prefix, item.Title)
		if err != nil {
			return nil, err
		}
		set = append(set, models.Chunk{
			Index:    index,
			Total:    total,
			Payload:  item.Body,
			Checksum: itemChecksum(item),
		})
	}
	return set, nil
}

// replaceRemoteChunks replaces the full remote chunk set under prefix with
// the chunked payload: existing items are updated in place by index, then
// higher-indexed leftovers, duplicates and unparsable items are deleted so a
// later read finds exactly the new set. Returns the new chunk count.
func replaceRemoteChunks(ctx context.Context, store adapter.ItemStore, prefix, actor, payload string, ceiling int) (int, error) {
	set, err := chunk.Split(payload, ceiling)
	if err != nil {
		return 0, fmt.Errorf("split payload: %w", err)
	}

	existing, err := store.ListItems(ctx, adapter.ItemQuery{TitlePrefix: prefix, Tag: SyncTag})
	if err != nil {
		return 0, fmt.Errorf("list remote chunk items: %w", err)
	}
	existingIDs, strays := indexRemoteItems(prefix, existing, len(set))

	if err = store.BatchSet(ctx, chunkItems(set, prefix, actor, existingIDs)); err != nil {
		return 0, fmt.Errorf("write remote chunk items: %w", err)
	}

	for _, id := range strays {
		if err = store.DeleteItem(ctx, id); err != nil && !errors.Is(err, adapter.ErrItemNotFound) {
			return 0, fmt.Errorf("delete stale chunk item: %w", err)
		}
	}

	return len(set), nil
}

func itemChecksum(item models.RemoteItem) string {
	for _, tag := range item.Tags {
		if sum, ok := strings.CutPrefix(tag, checksumTagPrefix); ok {
			return sum
		}
	}
	return ""
}
