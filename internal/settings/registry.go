// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package settings

import (
	"encoding/json"

	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// Category registry key names. These names are part of the remote document
// contract: every device must agree on them, so they never change once
// shipped.
const (
	CategoryRootFolder          = "rootFolder"
	CategoryNotifications       = "notifications"
	CategoryAutoReloadRules     = "autoReloadRules"
	CategoryDarkModeRules       = "darkModeRules"
	CategoryBrightModeWhitelist = "brightModeWhitelist"
	CategoryHighlightTextRules  = "highlightTextRules"
	CategoryVideoEnhanceRules   = "videoEnhanceRules"
	CategoryBlockElementRules   = "blockElementRules"
	CategoryCustomCodeRules     = "customCodeRules"
	CategoryLLMPromptPresets    = "llmPromptPresets"
	CategoryURLProcessRules     = "urlProcessRules"
	CategoryAutoLoginRules      = "autoLoginRules"
	CategoryScreenshot          = "screenshot"
	CategoryPinnedShortcut      = "pinnedShortcut"
)

// NormalizeFunc coerces a raw category value into its canonical shape.
// Implementations must be pure and idempotent: invalid entries are dropped
// or coerced, never reported as errors, and normalizing already-normalized
// data is a no-op.
type NormalizeFunc func(json.RawMessage) json.RawMessage

// Category describes one configuration category: its wire name, the default
// value used when nothing is stored, whether the value is a rule list (which
// matters for the merge protocol's element-level union), and its normalizer.
type Category struct {
	Name      string
	Default   json.RawMessage
	List      bool
	Normalize NormalizeFunc
}

// Registry is the data-driven table of all known configuration categories.
// It is constructed once at startup and shared read-only afterwards.
type Registry struct {
	categories []Category
	index      map[string]int
}

// NewRegistry constructs the registry with every category the application
// ships. The sync engine iterates this table; nothing else enumerates
// categories.
func NewRegistry() *Registry {
	categories := []Category{
		{
			Name:      CategoryRootFolder,
			Default:   json.RawMessage(`{"folderId":"","provider":""}`),
			Normalize: normalizeObject(map[string]any{"folderId": "", "provider": ""}),
		},
		{
			Name:      CategoryNotifications,
			Default:   json.RawMessage(`{"bookmarkSync":true,"projectSave":true,"settingsSync":true}`),
			Normalize: normalizeObject(map[string]any{"bookmarkSync": true, "projectSave": true, "settingsSync": true}),
		},
		{
			Name:      CategoryAutoReloadRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("pattern"),
		},
		{
			Name:      CategoryDarkModeRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("pattern"),
		},
		{
			Name:      CategoryBrightModeWhitelist,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeStringList,
		},
		{
			Name:      CategoryHighlightTextRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("pattern"),
		},
		{
			Name:      CategoryVideoEnhanceRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("pattern"),
		},
		{
			Name:      CategoryBlockElementRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("pattern"),
		},
		{
			Name:      CategoryCustomCodeRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("pattern"),
		},
		{
			Name:      CategoryLLMPromptPresets,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("title"),
		},
		{
			Name:      CategoryURLProcessRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("match"),
		},
		{
			Name:      CategoryAutoLoginRules,
			Default:   json.RawMessage(`[]`),
			List:      true,
			Normalize: normalizeRuleList("pattern"),
		},
		{
			Name:      CategoryScreenshot,
			Default:   json.RawMessage(`{"format":"png","quality":90}`),
			Normalize: normalizeObject(map[string]any{"format": "png", "quality": float64(90)}),
		},
		{
			Name:      CategoryPinnedShortcut,
			Default:   json.RawMessage(`""`),
			Normalize: normalizeString,
		},
	}

	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c.Name] = i
	}

	return &Registry{categories: categories, index: index}
}

// All returns the registered categories in registration order.
func (r *Registry) All() []Category {
	return r.categories
}

// Names returns every registered category name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the category with the given name.
func (r *Registry) Lookup(name string) (Category, bool) {
	i, ok := r.index[name]
	if !ok {
		return Category{}, false
	}
	return r.categories[i], true
}

// NormalizeDocument coerces a full document into canonical shape: every
// registered category key present, every value normalized. Categories whose
// stored value is not even parseable JSON are reset to their default and
// reported in skipped — one corrupt category never blocks the rest.
// Unregistered keys in doc are dropped.
func (r *Registry) NormalizeDocument(doc models.SettingsDocument) (models.SettingsDocument, []string) {
	out := make(models.SettingsDocument, len(r.categories))
	var skipped []string

	for _, cat := range r.categories {
		raw, ok := doc[cat.Name]
		if !ok || len(raw) == 0 {
			out[cat.Name] = cat.Default
			continue
		}
		if !json.Valid(raw) {
			out[cat.Name] = cat.Default
			skipped = append(skipped, cat.Name)
			continue
		}
		out[cat.Name] = cat.Normalize(raw)
	}

	return out, skipped
}
