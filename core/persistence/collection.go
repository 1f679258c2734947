package persistence

import (
	"context"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/query"
)

// CollectionRef is a named collection within a store.
type CollectionRef struct {
	store *Store
	name  string
}

// Name returns the collection name.
func (c *CollectionRef) Name() string {
	return c.name
}

// Doc returns a handle to the record with the given id.
func (c *CollectionRef) Doc(id string) *RecordHandle {
	return &RecordHandle{store: c.store, collection: c.name, id: id}
}

// Add inserts fields under a freshly generated time-ordered id.
func (c *CollectionRef) Add(ctx context.Context, fields core.Document) (*RecordHandle, error) {
	id, err := c.store.newID()
	if err != nil {
		return nil, err
	}
	h := c.Doc(id)
	if err := h.Create(ctx, fields); err != nil {
		return nil, err
	}
	return h, nil
}

// Query starts an unfiltered query against the collection.
func (c *CollectionRef) Query() query.Query {
	return query.New(c.name)
}

// Where starts a query with one predicate.
func (c *CollectionRef) Where(field string, op query.Operator, value any) (query.Query, error) {
	return c.Query().Where(field, op, value)
}

// OrderBy starts a sorted query.
func (c *CollectionRef) OrderBy(field string, direction query.SortDirection) (query.Query, error) {
	return c.Query().OrderBy(field, direction)
}

// Limit starts a limited query.
func (c *CollectionRef) Limit(n int) (query.Query, error) {
	return c.Query().Limit(n)
}

// Get returns every record of the collection in insertion order.
func (c *CollectionRef) Get(ctx context.Context) (*Snapshot, error) {
	return c.store.Run(ctx, c.Query())
}
