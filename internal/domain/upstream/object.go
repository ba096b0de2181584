// Package upstream decodes the enrichment service's loosely-typed JSON into
// explicit optional-field records. Decoding is lenient field by field: a field
// with an unexpected JSON type is treated as absent, never as an error.
package upstream

import (
	"bytes"
	"encoding/json"
	"math"
)

// Object is one upstream JSON object with its fields left undecoded.
type Object map[string]json.RawMessage

// ParseObject decodes data as a JSON object. Anything else yields an empty Object.
func ParseObject(data []byte) Object {
	var o Object
	if err := json.Unmarshal(data, &o); err != nil || o == nil {
		return Object{}
	}
	return o
}

// Has reports whether key is present and not null.
func (o Object) Has(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// Str returns the field as a string. Empty strings count as absent.
func (o Object) Str(key string) *string {
	var s string
	if !o.decode(key, &s) || s == "" {
		return nil
	}
	return &s
}

// Number returns the field as a finite number.
func (o Object) Number(key string) *float64 {
	var f float64
	if !o.decode(key, &f) || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Int returns the field as an integer (numbers are truncated).
func (o Object) Int(key string) *int {
	f := o.Number(key)
	if f == nil {
		return nil
	}
	v := int(math.Trunc(*f))
	return &v
}

// Nested returns the field as a nested object.
func (o Object) Nested(key string) (Object, bool) {
	raw, ok := o[key]
	if !ok || !isObject(raw) {
		return nil, false
	}
	return ParseObject(raw), true
}

// Array returns the elements of an array field. ok is false if the field is
// absent or not an array.
func (o Object) Array(key string) ([]json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok {
		return nil, false
	}
	return asArray(raw)
}

// Strings returns the string elements of an array field, skipping non-strings.
func (o Object) Strings(key string) []string {
	items, ok := o.Array(key)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (o Object) decode(key string, dst any) bool {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if !isArray(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isNull(raw json.RawMessage) bool   { return bytes.Equal(bytes.TrimSpace(raw), []byte("null")) }
func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }
func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }
