// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package crdt

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// Document is the replicated settings document: one entry per category.
// Scalar/object categories are whole-value last-writer-wins; list categories
// merge per element so concurrent insertions from different devices are both
// retained. Deleted list elements stay as tombstones.
type Document map[string]models.CategoryEntry

// ParseDocument decodes a serialized document.
func ParseDocument(serialized string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(serialized), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Serialize returns the canonical JSON form of the document. encoding/json
// sorts map keys and element slices are kept in merge order, so two equal
// documents always serialize to identical bytes.
func (d Document) Serialize() (string, error) {
	out, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for name, entry := range d {
		out[name] = cloneEntry(entry)
	}
	return out
}

func cloneEntry(entry models.CategoryEntry) models.CategoryEntry {
	clone := entry
	clone.Value = append(json.RawMessage(nil), entry.Value...)
	if entry.Elements != nil {
		clone.Elements = make([]models.ListElement, len(entry.Elements))
		for i, el := range entry.Elements {
			clone.Elements[i] = el
			clone.Elements[i].Value = append(json.RawMessage(nil), el.Value...)
		}
	}
	return clone
}

// MaxClock returns the highest Lamport timestamp anywhere in the document,
// used to fold remote state into the local clock.
func (d Document) MaxClock() int64 {
	var max int64
	for _, entry := range d {
		if entry.Clock > max {
			max = entry.Clock
		}
		for _, el := range entry.Elements {
			if el.Clock > max {
				max = el.Clock
			}
		}
	}
	return max
}

// SetValue records a local write of a non-list category.
func (d Document) SetValue(category string, value json.RawMessage, clock int64, actor string) {
	d[category] = models.CategoryEntry{
		Value: append(json.RawMessage(nil), value...),
		Clock: clock,
		Actor: actor,
	}
}

// SetElements records a local write of a list category. Elements are diffed
// against the current entry by key: unchanged elements keep their existing
// tag, new or modified ones are stamped with the given clock, and elements
// that disappeared locally become tombstones.
func (d Document) SetElements(category string, values []json.RawMessage, clock int64, actor string) {
	prev := map[string]models.ListElement{}
	if entry, ok := d[category]; ok {
		for _, el := range entry.Elements {
			prev[el.Key] = el
		}
	}

	seen := make(map[string]bool, len(values))
	elements := make([]models.ListElement, 0, len(values))
	for _, value := range values {
		key := ElementKey(value)
		if seen[key] {
			continue
		}
		seen[key] = true

		if old, ok := prev[key]; ok && !old.Deleted && CanonicalEqual(old.Value, value) {
			elements = append(elements, old)
			continue
		}
		elements = append(elements, models.ListElement{
			Key:   key,
			Value: append(json.RawMessage(nil), value...),
			Clock: clock,
			Actor: actor,
		})
	}

	// locally removed elements become tombstones so the removal replicates
	for key, old := range prev {
		if seen[key] || old.Deleted {
			if old.Deleted && !seen[key] {
				elements = append(elements, old)
			}
			continue
		}
		elements = append(elements, models.ListElement{
			Key:     key,
			Value:   old.Value,
			Clock:   clock,
			Actor:   actor,
			Deleted: true,
		})
	}

	sortElements(elements)
	d[category] = models.CategoryEntry{
		Elements: elements,
		List:     true,
		Clock:    clock,
		Actor:    actor,
	}
}

// Value projects one category back to its plain JSON value: the stored value
// for scalar categories, the array of live element values for list ones.
func (d Document) Value(category string) (json.RawMessage, bool) {
	entry, ok := d[category]
	if !ok {
		return nil, false
	}
	if !entry.List {
		return entry.Value, true
	}

	values := make([]json.RawMessage, 0, len(entry.Elements))
	for _, el := range entry.Elements {
		if !el.Deleted {
			values = append(values, el.Value)
		}
	}
	out, err := json.Marshal(values)
	if err != nil {
		return nil, false
	}
	return out, true
}

// Settings projects the whole document to a plain settings document.
func (d Document) Settings() models.SettingsDocument {
	out := make(models.SettingsDocument, len(d))
	for name := range d {
		if value, ok := d.Value(name); ok {
			out[name] = value
		}
	}
	return out
}

// Merge combines two documents into a new one. The operation is commutative,
// associative and idempotent: per category, non-list entries resolve whole-
// value LWW, list entries merge per element with LWW per key. Neither input
// is modified.
func Merge(a, b Document) Document {
	out := a.Clone()
	for name, theirs := range b {
		ours, ok := out[name]
		if !ok {
			out[name] = cloneEntry(theirs)
			continue
		}

		if theirs.List || ours.List {
			out[name] = mergeListEntries(ours, theirs)
			continue
		}
		if theirs.NewerThan(ours) {
			out[name] = cloneEntry(theirs)
		}
	}
	return out
}

func mergeListEntries(a, b models.CategoryEntry) models.CategoryEntry {
	byKey := make(map[string]models.ListElement, len(a.Elements)+len(b.Elements))
	for _, el := range a.Elements {
		byKey[el.Key] = el
	}
	for _, el := range b.Elements {
		if existing, ok := byKey[el.Key]; !ok || el.NewerThan(existing) {
			byKey[el.Key] = el
		}
	}

	elements := make([]models.ListElement, 0, len(byKey))
	for _, el := range byKey {
		elements = append(elements, el)
	}
	sortElements(elements)

	winner := a
	if b.NewerThan(a) {
		winner = b
	}
	return models.CategoryEntry{
		Elements: elements,
		List:     true,
		Clock:    winner.Clock,
		Actor:    winner.Actor,
	}
}

// sortElements orders list elements by (Clock, Actor, Key) so every replica
// emits elements in the same order: roughly insertion order, with a total
// order on ties.
func sortElements(elements []models.ListElement) {
	sort.Slice(elements, func(i, j int) bool {
		if elements[i].Clock != elements[j].Clock {
			return elements[i].Clock < elements[j].Clock
		}
		if elements[i].Actor != elements[j].Actor {
			return elements[i].Actor < elements[j].Actor
		}
		return elements[i].Key < elements[j].Key
	})
}

// ElementKey identifies a list element across devices. Objects that declare
// an "id" string use it; anything else is keyed by a content hash, so equal
// values collapse to one element.
func ElementKey(value json.RawMessage) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(value, &obj); err == nil {
		var id string
		if raw, ok := obj["id"]; ok && json.Unmarshal(raw, &id) == nil && id != "" {
			return "id:" + id
		}
	}

	canonical, err := canonicalJSON(value)
	if err != nil {
		canonical = value
	}
	sum := sha256.Sum256(canonical)
	return "h:" + hex.EncodeToString(sum[:8])
}

func canonicalJSON(raw json.RawMessage) (json.RawMessage, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// CanonicalEqual reports whether two raw JSON values are equal after
// canonicalization (key order and whitespace insensitive).
func CanonicalEqual(a, b json.RawMessage) bool {
	ca, errA := canonicalJSON(a)
	cb, errB := canonicalJSON(b)
	if errA != nil || errB != nil {
		return string(a) == string(b)
	}
	return string(ca) == string(cb)
}
