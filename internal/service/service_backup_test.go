// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/adapter"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/crypto"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/settings"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// ── shared fakes ─────────────────────────────────────────────────────────────

// memRepository is an in-memory settings.Repository.
type memRepository struct {
	mu         sync.Mutex
	categories map[string]string
	meta       map[string]string
}

func newMemRepository() *memRepository {
	return &memRepository{
		categories: make(map[string]string),
		meta:       make(map[string]string),
	}
}

func (r *memRepository) GetCategory(_ context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.categories[name]
	if !ok {
		return "", settings.ErrCategoryNotFound
	}
	return v, nil
}

func (r *memRepository) GetAllCategories(_ context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.categories))
	for k, v := range r.categories {
		out[k] = v
	}
	return out, nil
}

func (r *memRepository) UpsertCategory(_ context.Context, name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[name] = value
	return nil
}

func (r *memRepository) GetMeta(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.meta[key]
	if !ok {
		return "", settings.ErrMetaNotFound
	}
	return v, nil
}

func (r *memRepository) SetMeta(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta[key] = value
	return nil
}

// fakeItemStore is an in-memory note service. It enforces the same body
// ceiling as the real adapter so oversized chunks fail tests loudly.
type fakeItemStore struct {
	mu     sync.Mutex
	items  map[string]models.RemoteItem
	nextID int
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: make(map[string]models.RemoteItem)}
}

func (f *fakeItemStore) put(item models.RemoteItem) models.RemoteItem {
	if item.ID == "" {
		f.nextID++
		item.ID = fmt.Sprintf("itm-%d", f.nextID)
	}
	f.items[item.ID] = item
	return item
}

func (f *fakeItemStore) CreateItem(_ context.Context, item models.RemoteItem) (models.RemoteItem, error) {
	if utf8.RuneCountInString(item.Body) > models.RemoteBodyLimit {
		return models.RemoteItem{}, adapter.ErrPayloadTooLarge
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = ""
	return f.put(item), nil
}

func (f *fakeItemStore) UpdateItem(_ context.Context, item models.RemoteItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return adapter.ErrItemNotFound
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemStore) DeleteItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return adapter.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) ListItems(_ context.Context, q adapter.ItemQuery) ([]models.RemoteItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RemoteItem
	for _, item := range f.items {
		if q.TitlePrefix != "" && !strings.HasPrefix(item.Title, q.TitlePrefix) {
			continue
		}
		if q.Tag != "" && !hasTag(item, q.Tag) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeItemStore) BatchGet(_ context.Context, ids []string) ([]models.RemoteItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RemoteItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeItemStore) BatchSet(_ context.Context, items []models.RemoteItem) error {
	for _, item := range items {
		if utf8.RuneCountInString(item.Body) > models.RemoteBodyLimit {
			return adapter.ErrPayloadTooLarge
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.put(item)
	}
	return nil
}

func hasTag(item models.RemoteItem, tag string) bool {
	for _, t := range item.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// fakeStatus records outcomes without cooldown logic.
type fakeStatus struct {
	mu       sync.Mutex
	outcomes []models.SyncOutcome
	backups  int
	restores int
	merges   int
}

func (f *fakeStatus) Record(o models.SyncOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
}

func (f *fakeStatus) Snapshot() models.SyncState { return models.SyncState{} }

func (f *fakeStatus) SetNotifier(func(models.SyncError)) {}

func (f *fakeStatus) MarkBackup(_ time.Time)  { f.mu.Lock(); f.backups++; f.mu.Unlock() }
func (f *fakeStatus) MarkRestore(_ time.Time) { f.mu.Lock(); f.restores++; f.mu.Unlock() }
func (f *fakeStatus) MarkMerge(_ time.Time)   { f.mu.Lock(); f.merges++; f.mu.Unlock() }

func (f *fakeStatus) recorded() []models.SyncOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SyncOutcome(nil), f.outcomes...)
}

func newLocalStore(t *testing.T) (settings.Store, *memRepository) {
	t.Helper()
	repo := newMemRepository()
	return settings.NewStore(repo, settings.NewRegistry(), logger.Nop()), repo
}

// ── backup ───────────────────────────────────────────────────────────────────

func TestBackup_SmallDocumentSingleChunk(t *testing.T) {
	store, _ := newLocalStore(t)
	remote := newFakeItemStore()
	status := &fakeStatus{}
	svc := NewBackupService(store, remote, nil, status, logger.Nop(), "linux-a")
	ctx := context.Background()

	require.NoError(t, store.WriteCategory(ctx, settings.CategoryPinnedShortcut, json.RawMessage(`"backup"`), settings.WriteOptions{}))

	outcome, err := svc.Backup(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.True(t, outcome.OK)
	assert.Equal(t, 1, outcome.ChunkCount)

	items, _ := remote.ListItems(ctx, adapter.ItemQuery{TitlePrefix: OverwriteTitlePrefix})
	require.Len(t, items, 1)
	assert.Equal(t, "nenya-settings 1/1", items[0].Title)
	assert.Contains(t, items[0].Tags, SyncTag)
	assert.Equal(t, 1, status.backups)
}

func TestBackup_ShrinkingDocumentDeletesStaleChunks(t *testing.T) {
	store, _ := newLocalStore(t)
	remote := newFakeItemStore()
	svc := NewBackupService(store, remote, nil, &fakeStatus{}, logger.Nop(), "linux-a").(*backupService)
	ctx := context.Background()

	// seed a big list so the first backup needs several chunks
	big := make([]map[string]string, 0, 300)
	for i := 0; i < 300; i++ {
		big = append(big, map[string]string{
			"id":      fmt.Sprintf("rule-%03d", i),
			"pattern": fmt.Sprintf("*://site-%03d.example.com/*", i),
			"words":   strings.Repeat("x", 60),
		})
	}
	raw, err := json.Marshal(big)
	require.NoError(t, err)
	require.NoError(t, store.WriteCategory(ctx, settings.CategoryHighlightTextRules, raw, settings.WriteOptions{}))

	first, err := svc.Backup(ctx, models.TriggerManual)
	require.NoError(t, err)
	require.Greater(t, first.ChunkCount, 1, "test needs a multi-chunk document")

	// shrink to (almost) nothing and back up again
	require.NoError(t, store.WriteCategory(ctx, settings.CategoryHighlightTextRules, json.RawMessage(`[]`), settings.WriteOptions{}))
	second, err := svc.Backup(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, second.ChunkCount)

	items, _ := remote.ListItems(ctx, adapter.ItemQuery{TitlePrefix: OverwriteTitlePrefix})
	require.Len(t, items, 1, "higher-indexed chunk items must be deleted")
	assert.Equal(t, "nenya-settings 1/1", items[0].Title)
}

func TestRestore_RoundTripsBackup(t *testing.T) {
	storeA, _ := newLocalStore(t)
	remote := newFakeItemStore()
	ctx := context.Background()

	require.NoError(t, storeA.WriteCategory(ctx, settings.CategoryDarkModeRules,
		json.RawMessage(`[{"id":"d1","pattern":"*://x.com/*"}]`), settings.WriteOptions{}))
	require.NoError(t, storeA.WriteCategory(ctx, settings.CategoryPinnedShortcut,
		json.RawMessage(`"restore"`), settings.WriteOptions{}))

	_, err := NewBackupService(storeA, remote, nil, &fakeStatus{}, logger.Nop(), "linux-a").Backup(ctx, models.TriggerManual)
	require.NoError(t, err)

	// a second, empty device restores
	storeB, _ := newLocalStore(t)
	status := &fakeStatus{}
	outcome, err := NewBackupService(storeB, remote, nil, status, logger.Nop(), "darwin-b").Restore(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.True(t, outcome.OK)
	assert.Zero(t, outcome.Skipped)

	docA, err := storeA.ReadAll(ctx)
	require.NoError(t, err)
	docB, err := storeB.ReadAll(ctx)
	require.NoError(t, err)

	sa, _ := docA.Serialize()
	sb, _ := docB.Serialize()
	assert.Equal(t, sa, sb, "restore(backup(D)) must equal D")
	assert.Equal(t, 1, status.restores)
}

func TestRestore_NoRemoteBackup(t *testing.T) {
	store, _ := newLocalStore(t)
	svc := NewBackupService(store, newFakeItemStore(), nil, &fakeStatus{}, logger.Nop(), "linux-a")

	_, err := svc.Restore(context.Background(), models.TriggerManual)
	assert.ErrorIs(t, err, ErrNoRemoteBackup)
}

func TestRestore_MissingChunkAbortsUntouched(t *testing.T) {
	store, _ := newLocalStore(t)
	remote := newFakeItemStore()
	ctx := context.Background()

	require.NoError(t, store.WriteCategory(ctx, settings.CategoryPinnedShortcut, json.RawMessage(`"before"`), settings.WriteOptions{}))

	// remote set claims 3 chunks but the middle one is gone
	remote.mu.Lock()
	remote.put(models.RemoteItem{Title: "nenya-settings 1/3", Body: `{"par`, Tags: []string{SyncTag}})
	remote.put(models.RemoteItem{Title: "nenya-settings 3/3", Body: `ue"}`, Tags: []string{SyncTag}})
	remote.mu.Unlock()

	_, err := NewBackupService(store, remote, nil, &fakeStatus{}, logger.Nop(), "linux-a").Restore(ctx, models.TriggerManual)
	assert.ErrorIs(t, err, ErrRestoreAborted)

	got, err := store.ReadCategory(ctx, settings.CategoryPinnedShortcut)
	require.NoError(t, err)
	assert.Equal(t, `"before"`, string(got), "no local category may change on an aborted restore")
}

func TestRestore_InvalidCategorySkippedOthersApplied(t *testing.T) {
	store, _ := newLocalStore(t)
	remote := newFakeItemStore()
	ctx := context.Background()

	payload, err := models.SettingsDocument{
		settings.CategoryPinnedShortcut: json.RawMessage(`"backup"`),
		settings.CategoryDarkModeRules:  json.RawMessage(`"not an array but valid json"`),
	}.Serialize()
	require.NoError(t, err)

	remote.mu.Lock()
	remote.put(models.RemoteItem{Title: "nenya-settings 1/1", Body: payload, Tags: []string{SyncTag}})
	remote.mu.Unlock()

	outcome, err := NewBackupService(store, remote, nil, &fakeStatus{}, logger.Nop(), "linux-a").Restore(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.True(t, outcome.OK)

	got, _ := store.ReadCategory(ctx, settings.CategoryPinnedShortcut)
	assert.Equal(t, `"backup"`, string(got))
	dark, _ := store.ReadCategory(ctx, settings.CategoryDarkModeRules)
	assert.Equal(t, `[]`, string(dark), "invalid category resets to default")
}

func TestRestore_WritesAreEchoSuppressed(t *testing.T) {
	store, _ := newLocalStore(t)
	remote := newFakeItemStore()
	ctx := context.Background()
	svc := NewBackupService(store, remote, nil, &fakeStatus{}, logger.Nop(), "linux-a")

	_, err := svc.Backup(ctx, models.TriggerManual)
	require.NoError(t, err)

	foreign := 0
	cancel := store.Subscribe(func(ev settings.ChangeEvent) {
		if !ev.SelfOriginated {
			foreign++
		}
	})
	defer cancel()

	_, err = svc.Restore(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.Zero(t, foreign, "restore writes must be tagged self-originated")
}

func TestBackupRestore_Encrypted(t *testing.T) {
	store, _ := newLocalStore(t)
	remote := newFakeItemStore()
	ctx := context.Background()
	cipher := crypto.NewPayloadCipher("hunter2")

	require.NoError(t, store.WriteCategory(ctx, settings.CategoryPinnedShortcut, json.RawMessage(`"secret"`), settings.WriteOptions{}))
	_, err := NewBackupService(store, remote, cipher, &fakeStatus{}, logger.Nop(), "linux-a").Backup(ctx, models.TriggerManual)
	require.NoError(t, err)

	items, _ := remote.ListItems(ctx, adapter.ItemQuery{TitlePrefix: OverwriteTitlePrefix})
	require.Len(t, items, 1)
	assert.True(t, crypto.IsEncrypted(items[0].Body), "stored payload must be armored")

	// restore without a passphrase must refuse
	storeB, _ := newLocalStore(t)
	_, err = NewBackupService(storeB, remote, nil, &fakeStatus{}, logger.Nop(), "darwin-b").Restore(ctx, models.TriggerManual)
	assert.ErrorIs(t, err, ErrPassphraseRequired)

	// restore with the passphrase succeeds
	_, err = NewBackupService(storeB, remote, crypto.NewPayloadCipher("hunter2"), &fakeStatus{}, logger.Nop(), "darwin-b").Restore(ctx, models.TriggerManual)
	require.NoError(t, err)

	got, _ := storeB.ReadCategory(ctx, settings.CategoryPinnedShortcut)
	assert.Equal(t, `"secret"`, string(got))
}

func TestReset_RestoresDefaultsAndBacksUp(t *testing.T) {
	store, _ := newLocalStore(t)
	remote := newFakeItemStore()
	ctx := context.Background()
	svc := NewBackupService(store, remote, nil, &fakeStatus{}, logger.Nop(), "linux-a")

	require.NoError(t, store.WriteCategory(ctx, settings.CategoryDarkModeRules,
		json.RawMessage(`[{"pattern":"example.com"}]`), settings.WriteOptions{}))

	outcome, err := svc.Reset(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, len(store.Registry().Names()), outcome.Applied)
	assert.True(t, outcome.OK)

	// every local category is back at its default
	got, err := store.ReadCategory(ctx, settings.CategoryDarkModeRules)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))

	// the remote document reflects the reset immediately
	storeB, _ := newLocalStore(t)
	restored, err := NewBackupService(storeB, remote, nil, &fakeStatus{}, logger.Nop(), "darwin-b").Restore(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.True(t, restored.OK)

	gotB, err := storeB.ReadCategory(ctx, settings.CategoryDarkModeRules)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(gotB))
}

func TestBackup_FailureRecordedInStatus(t *testing.T) {
	store, _ := newLocalStore(t)
	status := &fakeStatus{}
	svc := NewBackupService(store, failingItemStore{}, nil, status, logger.Nop(), "linux-a")

	_, err := svc.Backup(context.Background(), models.TriggerManual)
	require.Error(t, err)

	recorded := status.recorded()
	require.Len(t, recorded, 1)
	assert.False(t, recorded[0].OK)
	assert.NotEmpty(t, recorded[0].Error)
	assert.Zero(t, status.backups)
}

// failingItemStore errors on every call.
type failingItemStore struct{}

func (failingItemStore) CreateItem(context.Context, models.RemoteItem) (models.RemoteItem, error) {
	return models.RemoteItem{}, adapter.ErrRemoteUnavailable
}
func (failingItemStore) UpdateItem(context.Context, models.RemoteItem) error {
	return adapter.ErrRemoteUnavailable
}
func (failingItemStore) DeleteItem(context.Context, string) error {
	return adapter.ErrRemoteUnavailable
}
func (failingItemStore) ListItems(context.Context, adapter.ItemQuery) ([]models.RemoteItem, error) {
	return nil, adapter.ErrRemoteUnavailable
}
func (failingItemStore) BatchGet(context.Context, []string) ([]models.RemoteItem, error) {
	return nil, adapter.ErrRemoteUnavailable
}
func (failingItemStore) BatchSet(context.Context, []models.RemoteItem) error {
	return adapter.ErrRemoteUnavailable
}
