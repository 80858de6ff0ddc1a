package settings

import "errors"

var (
	// ErrCategoryNotFound is returned when a category has never been
	// written locally. Callers usually fall back to the registry default.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUnknownCategory is returned for category names absent from the
	// registry. Unknown names are rejected rather than stored so the
	// registry stays the single source of truth.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrMetaNotFound is returned when a meta key has no stored value.
	ErrMetaNotFound = errors.New("meta key not found")

	// ErrStorageUnavailable wraps low-level persistence failures. Nothing
	// in the sync path can proceed without local persistence.
	ErrStorageUnavailable = errors.New("local storage unavailable")
)
