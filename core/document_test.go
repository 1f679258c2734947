package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Clone(t *testing.T) {
	original := Document{
		"name":    "Ada",
		"tags":    []any{"a", map[string]any{"k": "v"}},
		"meta":    map[string]any{"nested": []any{1, 2}},
		"scores":  []int{1, 2},
		"created": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	clone := original.Clone()
	require.Equal(t, original, clone)

	clone["name"] = "Grace"
	clone["tags"].([]any)[1].(map[string]any)["k"] = "changed"
	clone["meta"].(map[string]any)["nested"].([]any)[0] = 99
	clone["scores"].([]int)[0] = 42

	assert.Equal(t, "Ada", original["name"])
	assert.Equal(t, "v", original["tags"].([]any)[1].(map[string]any)["k"])
	assert.Equal(t, 1, original["meta"].(map[string]any)["nested"].([]any)[0])
	assert.Equal(t, 1, original["scores"].([]int)[0])
}

func TestDocument_CloneNil(t *testing.T) {
	var d Document
	clone := d.Clone()
	assert.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestDocument_Merge(t *testing.T) {
	base := Document{"name": "Hikers", "meta": map[string]any{"a": 1, "b": 2}}
	merged := base.Merge(Document{"meta": map[string]any{"a": 3}, "owner": "u1"})

	assert.Equal(t, Document{"name": "Hikers", "meta": map[string]any{"a": 3}, "owner": "u1"}, merged)
	assert.Equal(t, Document{"name": "Hikers", "meta": map[string]any{"a": 1, "b": 2}}, base)
}

func TestDocument_Get(t *testing.T) {
	d := Document{"likes": 3, "caption": nil}

	v, ok := d.Get("likes")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = d.Get("caption")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = d.Get("missing")
	assert.False(t, ok)
}

func TestRecord_Clone(t *testing.T) {
	r := Record{ID: "p1", Data: Document{"likes": []any{"u1"}}}
	c := r.Clone()
	c.Data["likes"].([]any)[0] = "u2"
	assert.Equal(t, "u1", r.Data["likes"].([]any)[0])
	assert.Equal(t, "p1", c.ID)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"duplicate", &DuplicateIDError{Collection: "users", ID: "u1"}, ErrDuplicateID, "duplicate id: users/u1"},
		{"not found", &NotFoundError{Collection: "photos", ID: "p1"}, ErrNotFound, "record not found: photos/p1"},
		{"invalid argument", &InvalidArgumentError{Field: "limit", Message: "limit must be greater than 0"}, ErrInvalidArgument, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			wrapped := errors.Join(errors.New("context"), tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			if tt.message != "" {
				assert.Equal(t, tt.message, tt.err.Error())
			}
			for _, other := range []error{ErrDuplicateID, ErrNotFound, ErrInvalidArgument} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(tt.err, other))
				}
			}
		})
	}

	var argErr *InvalidArgumentError
	err := error(&InvalidArgumentError{Field: "where.operator", Message: "unsupported operator"})
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "where.operator", argErr.Field)
	assert.Contains(t, err.Error(), "unsupported operator")
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{3, 3, true},
		{int64(-4), -4, true},
		{uint8(7), 7, true},
		{float32(1.5), 1.5, true},
		{2.25, 2.25, true},
		{"5", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
