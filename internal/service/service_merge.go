// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/adapter"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/chunk"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/crdt"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/crypto"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/settings"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// Meta keys for the merge engine's persisted replica state.
const (
	metaKeyMergeDocument = "merge_document"
	metaKeyMergeClock    = "merge_clock"
)

type mergeService struct {
	store  settings.Store
	meta   settings.MetaStore
	items  adapter.ItemStore
	cipher crypto.PayloadCipher // nil when no passphrase configured
	clock  *crdt.Clock
	status StatusService
	logger *logger.Logger

	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	running bool
	queued  bool
	pending map[string]bool // categories changed since the last cycle
}

// NewMergeService constructs the merge-protocol engine for the given device
// actor.
func NewMergeService(store settings.Store, meta settings.MetaStore, items adapter.ItemStore, cipher crypto.PayloadCipher, status StatusService, log *logger.Logger, actor string) MergeService {
	return &mergeService{
		store:   store,
		meta:    meta,
		items:   items,
		cipher:  cipher,
		clock:   crdt.NewClock(actor),
		status:  status,
		logger:  log,
		timeout: defaultOpTimeout,
		now:     time.Now,
		pending: make(map[string]bool),
	}
}

func (s *mergeService) NotifyChange(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[category] = true
}

// Sync implements [MergeService]. A call arriving while a cycle is running
// queues exactly one follow-up cycle and returns a zero outcome; the queued
// cycle's result reaches the status tracker as usual.
func (s *mergeService) Sync(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	s.mu.Lock()
	if s.running {
		s.queued = true
		s.mu.Unlock()
		return models.SyncOutcome{Trigger: trigger, Timestamp: s.now()}, nil
	}
	s.running = true
	s.mu.Unlock()

	var (
		outcome models.SyncOutcome
		err     error
	)
	for {
		outcome, err = s.cycle(ctx, trigger)
		s.record(outcome, err)
		if err == nil {
			s.status.MarkMerge(outcome.Timestamp)
		}

		s.mu.Lock()
		if s.queued {
			s.queued = false
			s.mu.Unlock()
			trigger = models.TriggerChange
			continue
		}
		s.running = false
		s.mu.Unlock()
		return outcome, err
	}
}

func (s *mergeService) cycle(ctx context.Context, trigger models.Trigger) (models.SyncOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome := models.SyncOutcome{Trigger: trigger, Timestamp: s.now()}

	s.mu.Lock()
	changed := s.pending
	s.pending = make(map[string]bool)
	s.mu.Unlock()
	if len(changed) > 0 {
		s.logger.Debug().Int("pending", len(changed)).Msg("merge cycle picks up local changes")
	}

	local, err := s.loadReplica(ctx)
	if err != nil {
		return outcome, err
	}

	// remote first: local edits folded below get Lamport-later stamps than
	// anything already published, so a user's fresh edit wins the merge
	remote, remoteSerialized, remoteChunks, err := s.fetchRemote(ctx)
	if err != nil {
		return outcome, err
	}
	s.clock.Observe(remote.MaxClock())

	if err = s.foldLocalSettings(ctx, local); err != nil {
		return outcome, err
	}

	merged := crdt.Merge(local, remote)
	mergedSerialized, err := merged.Serialize()
	if err != nil {
		return outcome, fmt.Errorf("serialize merged document: %w", err)
	}

	applied, err := s.applyLocally(ctx, merged)
	if err != nil {
		return outcome, err
	}
	outcome.Applied = applied

	outcome.ChunkCount = remoteChunks
	if mergedSerialized != remoteSerialized {
		payload := mergedSerialized
		if s.cipher != nil {
			if payload, err = s.cipher.Seal(payload); err != nil {
				return outcome, fmt.Errorf("encrypt payload: %w", err)
			}
		}
		chunkCount, uerr := replaceRemoteChunks(ctx, s.items, MergeTitlePrefix, s.clock.Actor(), payload, MergeChunkCeiling)
		if uerr != nil {
			return outcome, uerr
		}
		outcome.ChunkCount = chunkCount
		outcome.Uploaded = countEntryDiff(merged, remote)
	}

	if err = s.persistReplica(ctx, mergedSerialized); err != nil {
		return outcome, err
	}

	outcome.OK = true
	s.logger.Info().
		Str("trigger", string(trigger)).
		Int("applied", outcome.Applied).
		Int("uploaded", outcome.Uploaded).
		Msg("merge cycle completed")
	return outcome, nil
}

// loadReplica restores the persisted local document and clock.
func (s *mergeService) loadReplica(ctx context.Context) (crdt.Document, error) {
	doc := crdt.Document{}
	serialized, err := s.meta.GetMeta(ctx, metaKeyMergeDocument)
	switch {
	case err == nil:
		if doc, err = crdt.ParseDocument(serialized); err != nil {
			s.logger.Warn().Err(err).Msg("persisted merge document unreadable, starting fresh")
			doc = crdt.Document{}
		}
	case errors.Is(err, settings.ErrMetaNotFound):
	default:
		return nil, fmt.Errorf("load merge document: %w", err)
	}

	if counter, err := s.meta.GetMeta(ctx, metaKeyMergeClock); err == nil {
		if n, perr := strconv.ParseInt(counter, 10, 64); perr == nil {
			s.clock.Restore(n)
		}
	}
	s.clock.Restore(doc.MaxClock())

	return doc, nil
}

// foldLocalSettings stamps every locally edited category into the replica
// document with a fresh Lamport timestamp.
func (s *mergeService) foldLocalSettings(ctx context.Context, doc crdt.Document) error {
	current, err := s.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read local settings: %w", err)
	}

	for _, cat := range s.store.Registry().All() {
		value, ok := current[cat.Name]
		if !ok {
			continue
		}
		projected, exists := doc.Value(cat.Name)
		if exists && crdt.CanonicalEqual(projected, value) {
			continue
		}
		// a category this device never synced and never changed carries no
		// information; stamping it would let a fresh install's defaults
		// overwrite real values from other devices
		if !exists && crdt.CanonicalEqual(value, cat.Default) {
			continue
		}

		tick := s.clock.Tick()
		if cat.List {
			var elements []json.RawMessage
			if err = json.Unmarshal(value, &elements); err != nil {
				s.logger.Warn().Str("category", cat.Name).Err(err).Msg("list category value not an array, skipping")
				continue
			}
			doc.SetElements(cat.Name, elements, tick, s.clock.Actor())
		} else {
			doc.SetValue(cat.Name, value, tick, s.clock.Actor())
		}
	}

	return nil
}

// fetchRemote downloads and reassembles the remote replicated document. A
// missing document is an empty one; a corrupt chunk set aborts the cycle so
// a half-read document never contaminates the merge.
func (s *mergeService) fetchRemote(ctx context.Context) (crdt.Document, string, int, error) {
	items, err := s.items.ListItems(ctx, adapter.ItemQuery{TitlePrefix: MergeTitlePrefix, Tag: SyncTag})
	if err != nil {
		return nil, "", 0, fmt.Errorf("list remote chunk items: %w", err)
	}
	if len(items) == 0 {
		return crdt.Document{}, "", 0, nil
	}

	set, err := itemChunks(MergeTitlePrefix, items)
	if err != nil {
		return nil, "", 0, err
	}
	payload, err := chunk.Join(set)
	if err != nil {
		return nil, "", 0, fmt.Errorf("reassemble remote document: %w", err)
	}

	if crypto.IsEncrypted(payload) {
		if s.cipher == nil {
			return nil, "", 0, ErrPassphraseRequired
		}
		if payload, err = s.cipher.Open(payload); err != nil {
			return nil, "", 0, fmt.Errorf("decrypt remote document: %w", err)
		}
	}

	doc, err := crdt.ParseDocument(payload)
	if err != nil {
		return nil, "", 0, fmt.Errorf("parse remote document: %w", err)
	}

	serialized, err := doc.Serialize()
	if err != nil {
		return nil, "", 0, fmt.Errorf("serialize remote document: %w", err)
	}
	return doc, serialized, len(set), nil
}

// applyLocally writes merged categories whose projection differs from the
// current local value, with echo suppression so the writes do not loop back
// into the change queue.
func (s *mergeService) applyLocally(ctx context.Context, merged crdt.Document) (int, error) {
	current, err := s.store.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read local settings: %w", err)
	}

	applied := 0
	for _, cat := range s.store.Registry().All() {
		value, ok := merged.Value(cat.Name)
		if !ok {
			continue
		}
		if crdt.CanonicalEqual(value, current[cat.Name]) {
			continue
		}
		if err = s.store.WriteCategory(ctx, cat.Name, value, settings.WriteOptions{SuppressEcho: true}); err != nil {
			return applied, fmt.Errorf("apply category %s: %w", cat.Name, err)
		}
		applied++
	}
	return applied, nil
}

func (s *mergeService) persistReplica(ctx context.Context, serialized string) error {
	if err := s.meta.SetMeta(ctx, metaKeyMergeDocument, serialized); err != nil {
		return fmt.Errorf("persist merge document: %w", err)
	}
	if err := s.meta.SetMeta(ctx, metaKeyMergeClock, strconv.FormatInt(s.clock.Now(), 10)); err != nil {
		return fmt.Errorf("persist merge clock: %w", err)
	}
	return nil
}

func (s *mergeService) record(outcome models.SyncOutcome, err error) {
	if err != nil {
		outcome.OK = false
		outcome.Error = err.Error()
	}
	s.status.Record(outcome)
}

// countEntryDiff counts categories whose merged entry differs from the
// remote document's, i.e. what the upload actually contributed.
func countEntryDiff(merged, remote crdt.Document) int {
	diff := 0
	for name := range merged {
		mv, _ := merged.Value(name)
		rv, ok := remote.Value(name)
		if !ok || !crdt.CanonicalEqual(mv, rv) {
			diff++
		}
	}
	return diff
}
