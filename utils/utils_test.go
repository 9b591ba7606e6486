package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n ", true},
		{"x", false},
		{"  x  ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBlank(tt.in), "IsBlank(%q)", tt.in)
	}
}

func TestCloneMap(t *testing.T) {
	orig := map[string]any{
		"a":      "b",
		"nested": map[string]any{"x": 1},
		"list":   []any{"one", map[string]any{"y": 2}},
	}
	c := CloneMap(orig)
	assert.Equal(t, orig, c)

	c["nested"].(map[string]any)["x"] = 99
	c["list"].([]any)[0] = "changed"
	assert.Equal(t, 1, orig["nested"].(map[string]any)["x"])
	assert.Equal(t, "one", orig["list"].([]any)[0])

	assert.Nil(t, CloneMap(nil))
}

func TestNormalizeTimestamps(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)
	in := map[string]any{
		"created": ts,
		"ptr":     &ts,
		"nested":  map[string]any{"at": ts},
		"list":    []any{ts, "x"},
		"title":   "Hello",
	}

	out := NormalizeTimestamps(in).(map[string]any)
	assert.Equal(t, "2024-03-01T12:30:00.0000005Z", out["created"])
	assert.Equal(t, "2024-03-01T12:30:00.0000005Z", out["ptr"])
	assert.Equal(t, "2024-03-01T12:30:00.0000005Z", out["nested"].(map[string]any)["at"])
	assert.Equal(t, []any{"2024-03-01T12:30:00.0000005Z", "x"}, out["list"])
	assert.Equal(t, "Hello", out["title"])

	// input untouched
	assert.Equal(t, ts, in["created"])
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-03-01T12:30:00Z",
		"2024-03-01T12:30:00.000Z",
		"2024-03-01T14:30:00+02:00",
		"2024-03-01 12:30:00",
	} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed to %s", s, got)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

type post struct {
	Title   string    `json:"title"`
	Body    string    `json:"body,omitempty"`
	Created time.Time `json:"created"`
}

func TestStructMapRoundTrip(t *testing.T) {
	m, err := StructToMap(post{Title: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", m["title"])
	assert.NotContains(t, m, "body")

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p, err := MapToStruct[post](map[string]any{"title": "Hi", "created": ts})
	require.NoError(t, err)
	assert.Equal(t, "Hi", p.Title)
	assert.True(t, ts.Equal(p.Created))
}

func TestStructToMap_Errors(t *testing.T) {
	_, err := StructToMap[any](nil)
	assert.Error(t, err)

	var nilPost *post
	_, err = StructToMap(nilPost)
	assert.Error(t, err)

	_, err = StructToMap(42)
	assert.Error(t, err)

	_, err = MapToStruct[post](nil)
	assert.Error(t, err)

	_, err = MapToStruct[int](map[string]any{})
	assert.Error(t, err)
}
