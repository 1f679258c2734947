// Package utils converts between Go structs and the untyped documents the
// store keeps, using JSON as the bridge.
package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/asaidimu/go-docstore/core"
)

// StructToDocument converts a Go struct into a core.Document.
//
// The struct is marshaled to JSON, so `json:"tag"` annotations decide the
// field names and `omitempty` decides which zero values are dropped. The JSON
// is then decoded back into a document with DecodeDocument, which means
// nested structs become map[string]any, slices become []any and numbers
// become int64 when integral and float64 otherwise. Queries can then compare
// nested values field by field.
//
// The input must be a struct or a non-nil pointer to a struct.
//
// Example:
//
//	type Photo struct {
//		GroupID string `json:"groupId"`
//		Likes   int    `json:"likes"`
//	}
//	doc, err := StructToDocument(Photo{GroupID: "g1", Likes: 3})
//	// doc is core.Document{"groupId": "g1", "likes": int64(3)}
func StructToDocument[T any](record T) (core.Document, error) {
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
		return nil, fmt.Errorf("StructToDocument: failed to marshal input record to JSON: %w", err)
	}

	doc, err := DecodeDocument(jsonBytes)
	if err != nil {
		return nil, fmt.Errorf("StructToDocument: %w", err)
	}
	return doc, nil
}

// DocumentToStruct is the inverse of StructToDocument: it converts a document
// into a new instance of the struct type T.
//
// T must be a struct type or a pointer to one. A nil document is an error.
func DocumentToStruct[T any](input core.Document) (T, error) {
	var zero T

	if input == nil {
		return zero, fmt.Errorf("DocumentToStruct: input document cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ == nil {
		return zero, fmt.Errorf("DocumentToStruct: generic type T must be a struct type (or pointer to struct)")
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("DocumentToStruct: generic type T must be a struct type (or pointer to struct), got %s", typ.Kind())
	}

	jsonBytes, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("DocumentToStruct: failed to marshal input document to JSON: %w", err)
	}

	var result T
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return zero, fmt.Errorf("DocumentToStruct: failed to unmarshal JSON to target struct: %w", err)
	}

	return result, nil
}

// DecodeDocument decodes a JSON object into a document, keeping integral
// numbers as int64 instead of letting them collapse into float64.
func DecodeDocument(data []byte) (core.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to decode document: not a JSON object")
	}

	out := make(core.Document, len(raw))
	for k, v := range raw {
		out[k] = NormalizeNumbers(v)
	}
	return out, nil
}

// NormalizeNumbers walks a value decoded with json.Decoder.UseNumber and
// replaces every json.Number with an int64 when it is integral and fits, or a
// float64 otherwise.
func NormalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(val.String(), 10, 64); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = NormalizeNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = NormalizeNumbers(item)
		}
		return val
	default:
		return v
	}
}
