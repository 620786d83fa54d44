// Copyright 2025 Certen Protocol
//
// Package codec provides the single canonical byte encoding used for every
// CausalityEvent and entity in this module, resolving the "pick one
// canonical encoding" open question in SPEC_FULL.md §3. It is RFC
// 8785-style canonical JSON: deterministic key ordering, stable number
// formatting, arrays retain insertion order.

package codec

import (
	"bytes"
	"encoding/json"
	"sort"
)

// MarshalCanonical encodes v as canonical JSON: every object's keys are
// sorted, arrays keep their order. This is the one binary form used for
// CausalityEvent.to_bytes, SMT leaf values, and storage payloads.
func MarshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Canonicalize(raw)
}

// UnmarshalCanonical decodes canonical JSON produced by MarshalCanonical
// into v. Canonical JSON is valid JSON, so this is a plain json.Unmarshal;
// it exists for symmetry with MarshalCanonical and to keep call sites from
// depending on encoding/json directly.
func UnmarshalCanonical(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Canonicalize takes arbitrary JSON bytes and returns a canonical encoding
// with deterministically ordered object keys. Numbers are decoded via
// json.Number rather than float64, so integers beyond 2^53 (timestamps in
// nanoseconds, block numbers, quantities) round-trip exactly instead of
// being rounded to the nearest representable float64.
func Canonicalize(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(canonicalizeValue(v))
}

// canonicalizeValue recursively sorts map keys; arrays retain order.
func canonicalizeValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]interface{}, len(vv))
		for _, k := range keys {
			ordered[k] = canonicalizeValue(vv[k])
		}
		return ordered
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = canonicalizeValue(e)
		}
		return out
	default:
		return vv
	}
}
