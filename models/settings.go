// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package models

import "encoding/json"

// SettingsDocument is the in-memory projection of the user's configuration:
// a mapping from category name to the category's JSON value. Values are kept
// opaque at this level; each category's owning feature supplies a normalize
// function through the settings registry.
//
// After normalization every registered category key is present — a missing
// category is materialized with its default value, never left absent.
type SettingsDocument map[string]json.RawMessage

// Clone returns a deep copy of the document. Raw values are copied byte by
// byte so mutations of the clone never leak into the receiver.
func (d SettingsDocument) Clone() SettingsDocument {
	if d == nil {
		return nil
	}
	out := make(SettingsDocument, len(d))
	for name, value := range d {
		buf := make(json.RawMessage, len(value))
		copy(buf, value)
		out[name] = buf
	}
	return out
}

// Serialize renders the document as canonical JSON. Map keys are emitted in
// sorted order by encoding/json, so two equal documents always serialize to
// the identical byte sequence regardless of insertion order.
func (d SettingsDocument) Serialize() (string, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// ParseSettingsDocument decodes a serialized document produced by
// [SettingsDocument.Serialize].
func ParseSettingsDocument(serialized string) (SettingsDocument, error) {
	var doc SettingsDocument
	if err := json.Unmarshal([]byte(serialized), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(SettingsDocument)
	}
	return doc, nil
}
