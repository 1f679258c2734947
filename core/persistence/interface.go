// Package persistence provides the document store facade: named tables of
// records, addressed record handles, query execution and operation events.
// Storage is pluggable through Driver; the in-memory driver is the emulator
// and the sqlite package provides a durable one with the same call shape.
package persistence

import (
	"context"
	"iter"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/query"
)

// Table holds the records of one collection and provides the primitive
// operations the rest of the store composes.
type Table interface {
	// Name returns the collection name.
	Name() string

	// Get returns a copy of the record's fields. A missing record is reported
	// through the boolean, never as an error.
	Get(ctx context.Context, id string) (core.Document, bool, error)

	// Insert stores a new record. It fails with core.ErrDuplicateID when the
	// identifier is already present.
	Insert(ctx context.Context, id string, doc core.Document) error

	// Put creates or replaces a record. A replaced record keeps its position
	// in insertion order.
	Put(ctx context.Context, id string, doc core.Document) error

	// Merge shallow-merges patch into an existing record and returns the
	// merged fields. It fails with core.ErrNotFound when the record is absent.
	Merge(ctx context.Context, id string, patch core.Document) (core.Document, error)

	// Delete removes a record and reports whether it existed. Deleting an
	// absent record is not an error.
	Delete(ctx context.Context, id string) (bool, error)

	// All returns the current records in insertion order. Each range over the
	// sequence reads the table afresh.
	All(ctx context.Context) iter.Seq2[core.Record, error]
}

// Filterer is implemented by tables that can narrow a scan before records
// reach the query processor. The processor re-checks every predicate, so a
// Filterer may return a superset of the matching records but never drop one.
type Filterer interface {
	Filter(ctx context.Context, predicates []query.Predicate) iter.Seq2[core.Record, error]
}

// Driver maps collection names to tables.
type Driver interface {
	// Table returns the table for name, creating it on first reference. The
	// boolean reports whether this call created it. A table that could not be
	// registered is an error, never a half-created table.
	Table(name string) (Table, bool, error)

	// Lookup returns the table for name without creating it.
	Lookup(name string) (Table, bool)

	// Tables lists the known collection names in creation order.
	Tables(ctx context.Context) ([]string, error)

	// Close releases the driver's resources.
	Close() error
}
