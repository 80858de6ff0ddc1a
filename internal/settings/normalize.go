// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package settings

import "encoding/json"

// The normalizers below share two properties the registry contract demands:
// they are pure (no side effects, no stored state) and idempotent (their
// output re-normalizes to itself). Idempotency comes from re-marshalling
// through encoding/json, which emits object keys in sorted order, so a
// canonical value always round-trips byte-identical.

// normalizeRuleList returns a normalizer for rule-list categories. A valid
// element is a JSON object carrying a non-empty string under requiredKey.
// Invalid elements are dropped; element order is preserved.
func normalizeRuleList(requiredKey string) NormalizeFunc {
	return func(raw json.RawMessage) json.RawMessage {
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return json.RawMessage(`[]`)
		}

		kept := make([]map[string]any, 0, len(elems))
		for _, e := range elems {
			var obj map[string]any
			if err := json.Unmarshal(e, &obj); err != nil || obj == nil {
				continue
			}
			if s, ok := obj[requiredKey].(string); !ok || s == "" {
				continue
			}
			kept = append(kept, obj)
		}

		out, err := json.Marshal(kept)
		if err != nil {
			return json.RawMessage(`[]`)
		}
		return out
	}
}

// normalizeStringList keeps only string elements, dropping duplicates while
// preserving first-seen order.
func normalizeStringList(raw json.RawMessage) json.RawMessage {
	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return json.RawMessage(`[]`)
	}

	seen := make(map[string]struct{}, len(elems))
	kept := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok || s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		kept = append(kept, s)
	}

	out, err := json.Marshal(kept)
	if err != nil {
		return json.RawMessage(`[]`)
	}
	return out
}

// normalizeString coerces the value to a JSON string, defaulting to "".
func normalizeString(raw json.RawMessage) json.RawMessage {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return json.RawMessage(`""`)
	}
	out, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return out
}

// normalizeObject returns a normalizer that projects the input onto the
// default object's shape: known keys keep the input value when its JSON type
// matches the default's, everything else falls back to the default. Unknown
// keys are dropped.
func normalizeObject(defaults map[string]any) NormalizeFunc {
	return func(raw json.RawMessage) json.RawMessage {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			obj = nil
		}

		out := make(map[string]any, len(defaults))
		for key, def := range defaults {
			out[key] = def
			if obj == nil {
				continue
			}
			if v, ok := obj[key]; ok && sameJSONType(v, def) {
				out[key] = v
			}
		}

		payload, err := json.Marshal(out)
		if err != nil {
			payload, _ = json.Marshal(defaults)
		}
		return payload
	}
}

func sameJSONType(a, b any) bool {
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	case float64:
		_, ok := b.(float64)
		return ok
	case map[string]any:
		_, ok := b.(map[string]any)
		return ok
	case []any:
		_, ok := b.([]any)
		return ok
	default:
		return false
	}
}
