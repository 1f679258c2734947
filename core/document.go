// Package core holds the data model shared by every layer of the document
// store: documents, records and the error taxonomy.
package core

import (
	"maps"
	"reflect"
	"time"
)

// Document is the untyped field map of a single record. Values are scalars,
// slices or nested maps.
type Document map[string]any

// Record pairs a document with the identifier it is stored under. The
// identifier is never part of the field map, so updates cannot change it.
type Record struct {
	ID   string   `json:"id"`
	Data Document `json:"data"`
}

// Get returns the value of a top-level field and whether it is present.
func (d Document) Get(field string) (any, bool) {
	v, ok := d[field]
	return v, ok
}

// Clone returns a deep copy of the document. Nested maps and slices are
// copied so the clone never aliases the original.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = CloneValue(v)
	}
	return out
}

// Merge returns a copy of d with the top-level fields of patch applied over
// it. Nested values in patch replace, they are not merged recursively.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	maps.Copy(out, patch.Clone())
	return out
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	return Record{ID: r.ID, Data: r.Data.Clone()}
}

// CloneValue deep-copies maps and slices found in v. Scalars, times and
// values of other kinds are returned as is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Document:
		return val.Clone()
	case map[string]any:
		return map[string]any(Document(val).Clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	default:
		return v
	}
}
