// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// EchoWindow is how long a self-originated write marker stays active. The
// store's own change notification for an engine write always arrives within
// this window; anything later is treated as a genuine user edit.
const EchoWindow = 1500 * time.Millisecond

type settingsStore struct {
	repo     Repository
	registry *Registry
	logger   *logger.Logger

	mu      sync.Mutex
	echo    map[string]time.Time // category -> marker set time
	subs    map[int]func(ChangeEvent)
	nextSub int

	now func() time.Time
}

// NewStore constructs the settings store adapter over a repository.
func NewStore(repo Repository, registry *Registry, log *logger.Logger) Store {
	return &settingsStore{
		repo:     repo,
		registry: registry,
		logger:   log,
		echo:     make(map[string]time.Time),
		subs:     make(map[int]func(ChangeEvent)),
		now:      time.Now,
	}
}

func (s *settingsStore) Registry() *Registry {
	return s.registry
}

func (s *settingsStore) ReadCategory(ctx context.Context, name string) (json.RawMessage, error) {
	cat, ok := s.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, name)
	}

	value, err := s.repo.GetCategory(ctx, name)
	if errors.Is(err, ErrCategoryNotFound) {
		return cat.Default, nil
	}
	if err != nil {
		return nil, err
	}

	raw := json.RawMessage(value)
	if !json.Valid(raw) {
		// corrupted row: fall back to default rather than propagating
		// garbage into the sync path
		s.logger.Warn().Str("category", name).Msg("stored category value is not valid JSON, using default")
		return cat.Default, nil
	}

	return cat.Normalize(raw), nil
}

func (s *settingsStore) ReadAll(ctx context.Context) (models.SettingsDocument, error) {
	stored, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}

	doc := make(models.SettingsDocument, len(stored))
	for name, value := range stored {
		doc[name] = json.RawMessage(value)
	}

	normalized, skipped := s.registry.NormalizeDocument(doc)
	for _, name := range skipped {
		s.logger.Warn().Str("category", name).Msg("stored category value invalid, reset to default")
	}

	return normalized, nil
}

func (s *settingsStore) WriteCategory(ctx context.Context, name string, value json.RawMessage, opts WriteOptions) error {
	cat, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, name)
	}

	normalized := cat.Default
	if len(value) > 0 && json.Valid(value) {
		normalized = cat.Normalize(value)
	}

	if opts.SuppressEcho {
		s.markEcho(name)
	}

	if err := s.repo.UpsertCategory(ctx, name, string(normalized)); err != nil {
		return err
	}

	s.dispatch(ChangeEvent{
		Category:       name,
		SelfOriginated: s.echoActive(name),
	})

	return nil
}

func (s *settingsStore) Subscribe(fn func(ChangeEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// markEcho records the echo-suppression marker for a category. The marker
// expires on its own after [EchoWindow]; expired entries are pruned lazily.
func (s *settingsStore) markEcho(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for cat, at := range s.echo {
		if now.Sub(at) > EchoWindow {
			delete(s.echo, cat)
		}
	}
	s.echo[name] = now
}

func (s *settingsStore) echoActive(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.echo[name]
	return ok && s.now().Sub(at) <= EchoWindow
}

// dispatch delivers the event synchronously to all subscribers. Listeners
// are expected to be cheap (typically a queue enqueue); slow work belongs on
// the listener's own goroutine.
func (s *settingsStore) dispatch(ev ChangeEvent) {
	s.mu.Lock()
	fns := make([]func(ChangeEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
