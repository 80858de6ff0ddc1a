// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

func TestChunkTitle_RoundTrip(t *testing.T) {
	title := chunkTitle(OverwriteTitlePrefix, 2, 3)
	assert.Equal(t, "nenya-settings 2/3", title)

	index, total, err := parseChunkTitle(OverwriteTitlePrefix, title)
	require.NoError(t, err)
	assert.Equal(t, 2, index)
	assert.Equal(t, 3, total)
}

func TestParseChunkTitle_Malformed(t *testing.T) {
	for _, title := range []string{
		"other-app 1/2",
		"nenya-settings",
		"nenya-settings one/two",
	} {
		_, _, err := parseChunkTitle(OverwriteTitlePrefix, title)
		assert.ErrorIs(t, err, ErrMalformedRemoteItem, "title %q", title)
	}
}

func TestChunkItems_CarriesChecksumAndActor(t *testing.T) {
	set := models.ChunkSet{
		{Index: 1, Total: 2, Payload: "aa", Checksum: "deadbeef"},
		{Index: 2, Total: 2, Payload: "bb", Checksum: "deadbeef"},
	}

	items := chunkItems(set, MergeTitlePrefix, "linux-a", map[int]string{1: "itm-1"})
	require.Len(t, items, 2)

	assert.Equal(t, "itm-1", items[0].ID, "existing item reused by index")
	assert.Empty(t, items[1].ID)
	assert.Equal(t, "nenya-state 1/2", items[0].Title)
	assert.Contains(t, items[0].Tags, "sha256:deadbeef")
	assert.Contains(t, items[0].Tags, "actor:linux-a")
	assert.Contains(t, items[0].Tags, SyncTag)
}

func TestItemChunks_ParsesBack(t *testing.T) {
	items := []models.RemoteItem{
		{ID: "b", Title: "nenya-state 2/2", Body: "bb", Tags: []string{SyncTag, "sha256:feed"}},
		{ID: "a", Title: "nenya-state 1/2", Body: "aa", Tags: []string{SyncTag, "sha256:feed"}},
	}

	set, err := itemChunks(MergeTitlePrefix, items)
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, 2, set[0].Index)
	assert.Equal(t, "feed", set[0].Checksum)
	assert.Equal(t, "aa", set[1].Payload)
}

func TestItemChunks_MalformedItemFailsWholeParse(t *testing.T) {
	items := []models.RemoteItem{
		{Title: "nenya-state 1/2", Body: "aa"},
		{Title: "nenya-state junk", Body: "bb"},
	}

	_, err := itemChunks(MergeTitlePrefix, items)
	assert.ErrorIs(t, err, ErrMalformedRemoteItem)
}

func TestIndexRemoteItems(t *testing.T) {
	items := []models.RemoteItem{
		{ID: "one", Title: "nenya-settings 1/3"},
		{ID: "two", Title: "nenya-settings 2/3"},
		{ID: "three", Title: "nenya-settings 3/3"},
		{ID: "dup", Title: "nenya-settings 2/3"},
		{ID: "junk", Title: "nenya-settings note"},
	}

	byIndex, strays := indexRemoteItems(OverwriteTitlePrefix, items, 1)
	assert.Equal(t, map[int]string{1: "one"}, byIndex)
	assert.ElementsMatch(t, []string{"two", "three", "dup", "junk"}, strays)
}
