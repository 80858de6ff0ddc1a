package settings

import (
	"context"
	"encoding/json"

	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/settings_mock.go -package=mock

// Repository is the low-level persistence API for settings categories and
// device-local metadata. Values are stored as JSON text.
type Repository interface {
	GetCategory(ctx context.Context, name string) (string, error)
	GetAllCategories(ctx context.Context) (map[string]string, error)
	UpsertCategory(ctx context.Context, name, value string) error

	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}

// MetaStore is the subset of [Repository] needed by components that only
// persist device-local metadata (e.g. the device identity manager).
type MetaStore interface {
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}

// WriteOptions controls how a category write is dispatched.
type WriteOptions struct {
	// SuppressEcho marks the write as engine-originated: the resulting
	// change event is tagged SelfOriginated so the sync engine's change
	// listener does not re-queue an outbound sync for it.
	SuppressEcho bool
}

// ChangeEvent is delivered to subscribers after every category write.
type ChangeEvent struct {
	Category string
	// SelfOriginated is true when the write came from the sync engine
	// itself (echo suppression window active for the category).
	SelfOriginated bool
}

// Store is the settings store adapter used by the sync engine and the UI.
type Store interface {
	// ReadCategory returns the normalized value of one category, falling
	// back to the registry default when nothing was written yet.
	ReadCategory(ctx context.Context, name string) (json.RawMessage, error)

	// ReadAll returns the full settings document with every registered
	// category present (missing ones materialized from defaults).
	ReadAll(ctx context.Context) (models.SettingsDocument, error)

	// WriteCategory normalizes and persists one category value, then
	// dispatches a change event to subscribers.
	WriteCategory(ctx context.Context, name string, value json.RawMessage, opts WriteOptions) error

	// Subscribe registers a change listener and returns a cancel func.
	Subscribe(fn func(ChangeEvent)) (cancel func())

	// Registry exposes the category registry.
	Registry() *Registry
}
