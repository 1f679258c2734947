package persistence

import (
	"context"
	"fmt"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/query"
	"github.com/asaidimu/go-docstore/utils"
)

// Entry is a typed record.
type Entry[T any] struct {
	ID    string
	Value T
}

// TypedCollection maps the records of one collection to values of T using
// T's JSON field names. Queries stay untyped; field names in predicates are
// the JSON names.
type TypedCollection[T any] struct {
	ref *CollectionRef
}

// Typed returns a typed view over the named collection.
func Typed[T any](store *Store, name string) *TypedCollection[T] {
	return &TypedCollection[T]{ref: store.Collection(name)}
}

// Ref returns the underlying untyped collection.
func (c *TypedCollection[T]) Ref() *CollectionRef {
	return c.ref
}

// Get reads one record. The boolean reports whether it exists.
func (c *TypedCollection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	snap, err := c.ref.Doc(id).Get(ctx)
	if err != nil {
		return zero, false, err
	}
	if !snap.Exists() {
		return zero, false, nil
	}
	v, err := utils.DocumentToStruct[T](snap.Data())
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode %s/%s: %w", c.ref.Name(), id, err)
	}
	return v, true, nil
}

// Insert stores value under id and fails with core.ErrDuplicateID if the id
// is taken.
func (c *TypedCollection[T]) Insert(ctx context.Context, id string, value T) error {
	doc, err := utils.StructToDocument(value)
	if err != nil {
		return err
	}
	return c.ref.Doc(id).Create(ctx, doc)
}

// Put creates or replaces the record under id.
func (c *TypedCollection[T]) Put(ctx context.Context, id string, value T) error {
	doc, err := utils.StructToDocument(value)
	if err != nil {
		return err
	}
	return c.ref.Doc(id).Set(ctx, doc)
}

// Merge shallow-merges patch into the record and returns the merged value.
func (c *TypedCollection[T]) Merge(ctx context.Context, id string, patch core.Document) (T, error) {
	var zero T
	merged, err := c.ref.Doc(id).Update(ctx, patch)
	if err != nil {
		return zero, err
	}
	return utils.DocumentToStruct[T](merged)
}

// Delete removes the record under id if present.
func (c *TypedCollection[T]) Delete(ctx context.Context, id string) error {
	return c.ref.Doc(id).Delete(ctx)
}

// Run executes q, which must target this collection, and decodes the results.
func (c *TypedCollection[T]) Run(ctx context.Context, q query.Query) ([]Entry[T], error) {
	if q.Collection() != c.ref.Name() {
		return nil, &core.InvalidArgumentError{
			Field:   "query.collection",
			Message: fmt.Sprintf("query targets '%s', collection is '%s'", q.Collection(), c.ref.Name()),
		}
	}

	snap, err := c.ref.store.Run(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]Entry[T], 0, snap.Count())
	for _, r := range snap.Records {
		v, err := utils.DocumentToStruct[T](r.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", c.ref.Name(), r.ID, err)
		}
		out = append(out, Entry[T]{ID: r.ID, Value: v})
	}
	return out, nil
}

// All returns every record of the collection in insertion order.
func (c *TypedCollection[T]) All(ctx context.Context) ([]Entry[T], error) {
	return c.Run(ctx, c.ref.Query())
}
