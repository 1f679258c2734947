package persistence

import (
	"context"

	"github.com/asaidimu/go-docstore/core"
)

// RecordHandle addresses one record of one collection. It holds no data;
// every call goes to the store.
type RecordHandle struct {
	store      *Store
	collection string
	id         string
}

// ID returns the record's id.
func (h *RecordHandle) ID() string { return h.id }

// Collection returns the name of the collection the record belongs to.
func (h *RecordHandle) Collection() string { return h.collection }

// Get reads the record. Absence is reported by the snapshot, not an error.
func (h *RecordHandle) Get(ctx context.Context) (*DocumentSnapshot, error) {
	return h.store.get(ctx, h.collection, h.id)
}

// Create inserts the record and fails with core.ErrDuplicateID if it exists.
func (h *RecordHandle) Create(ctx context.Context, fields core.Document) error {
	return h.store.insert(ctx, h.collection, h.id, fields)
}

// Set creates or replaces the record.
func (h *RecordHandle) Set(ctx context.Context, fields core.Document) error {
	return h.store.put(ctx, h.collection, h.id, fields)
}

// Update shallow-merges patch into the record and returns the merged fields.
// It fails with core.ErrNotFound if the record does not exist.
func (h *RecordHandle) Update(ctx context.Context, patch core.Document) (core.Document, error) {
	return h.store.merge(ctx, h.collection, h.id, patch)
}

// Delete removes the record. Deleting a missing record is a no-op.
func (h *RecordHandle) Delete(ctx context.Context) error {
	_, err := h.store.delete(ctx, h.collection, h.id)
	return err
}
