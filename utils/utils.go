// Package utils holds small helpers shared by the store, editor and export
// code: blank checks, document cloning, timestamp normalisation and
// struct/document conversion.
package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// IsBlank reports whether s is empty or consists only of whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CloneMap returns a deep copy of m. Nested maps and slices are copied;
// other values are shared.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = cloneValue(e)
		}
		return c
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// NormalizeTimestamps returns a copy of v in which every time.Time (or
// *time.Time) is replaced by its ISO-8601 (RFC 3339, nanosecond precision)
// string. Maps and slices are walked recursively.
func NormalizeTimestamps(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = NormalizeTimestamps(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = NormalizeTimestamps(e)
		}
		return out
	default:
		return v
	}
}

// ParseTimestamp parses the timestamp encodings backends hand back: RFC 3339
// with or without fractional seconds, and the "YYYY-MM-DD HH:MM:SS" form
// SQLite's datetime() produces.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// StructToMap converts a struct into a document map by way of its JSON
// encoding, so `json` tags decide the keys. The input must be a struct or a
// non-nil pointer to one.
func StructToMap[T any](record T) (map[string]any, error) {
	val := reflect.ValueOf(record)
	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("StructToMap: failed to marshal input record to JSON: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, fmt.Errorf("StructToMap: failed to unmarshal JSON to map: %w", err)
	}
	return out, nil
}

// MapToStruct is the inverse of StructToMap: it decodes a document into a new
// value of struct type T. Timestamps are normalised first so time.Time fields
// decode from the RFC 3339 strings.
func MapToStruct[T any](input map[string]any) (T, error) {
	var zero T
	if input == nil {
		return zero, fmt.Errorf("MapToStruct: input map cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("MapToStruct: generic type T must be a struct type (or pointer to struct), got %s", typ.Kind())
	}

	jsonBytes, err := json.Marshal(NormalizeTimestamps(input))
	if err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to marshal input map to JSON: %w", err)
	}

	var result T
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to unmarshal JSON to target struct: %w", err)
	}
	return result, nil
}
