package persistence

import (
	"context"
	"iter"
	"sync"

	"github.com/asaidimu/go-docstore/core"
	"go.uber.org/zap"
)

// MemoryTable is an in-memory Table. Writers are serialized by a mutex and
// readers copy the records they return, so values handed out never alias
// table state.
type MemoryTable struct {
	name    string
	mu      sync.RWMutex
	records []core.Record
	index   map[string]int
}

// NewMemoryTable creates an empty table.
func NewMemoryTable(name string) *MemoryTable {
	return &MemoryTable{
		name:  name,
		index: make(map[string]int),
	}
}

var _ Table = (*MemoryTable)(nil)

// Name returns the collection name.
func (t *MemoryTable) Name() string {
	return t.name
}

// Get returns a copy of the record's fields.
func (t *MemoryTable) Get(_ context.Context, id string) (core.Document, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pos, ok := t.index[id]
	if !ok {
		return nil, false, nil
	}
	return t.records[pos].Data.Clone(), true, nil
}

// Insert stores a new record or fails with a DuplicateIDError.
func (t *MemoryTable) Insert(_ context.Context, id string, doc core.Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.index[id]; exists {
		return &core.DuplicateIDError{Collection: t.name, ID: id}
	}
	t.append(id, doc.Clone())
	return nil
}

// Put creates or replaces a record.
func (t *MemoryTable) Put(_ context.Context, id string, doc core.Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pos, exists := t.index[id]; exists {
		t.records[pos].Data = doc.Clone()
		return nil
	}
	t.append(id, doc.Clone())
	return nil
}

// Merge shallow-merges patch into an existing record.
func (t *MemoryTable) Merge(_ context.Context, id string, patch core.Document) (core.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, exists := t.index[id]
	if !exists {
		return nil, &core.NotFoundError{Collection: t.name, ID: id}
	}
	merged := t.records[pos].Data.Merge(patch)
	t.records[pos].Data = merged
	return merged.Clone(), nil
}

// Delete removes a record if present.
func (t *MemoryTable) Delete(_ context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, exists := t.index[id]
	if !exists {
		return false, nil
	}

	t.records = append(t.records[:pos], t.records[pos+1:]...)
	delete(t.index, id)
	for i := pos; i < len(t.records); i++ {
		t.index[t.records[i].ID] = i
	}
	return true, nil
}

// All returns the records in insertion order. Every range takes a fresh
// point-in-time copy under the read lock, then yields outside it.
func (t *MemoryTable) All(_ context.Context) iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		for _, r := range t.snapshot() {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Len returns the number of records.
func (t *MemoryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

func (t *MemoryTable) snapshot() []core.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]core.Record, len(t.records))
	for i, r := range t.records {
		out[i] = r.Clone()
	}
	return out
}

// append must be called with the write lock held.
func (t *MemoryTable) append(id string, doc core.Document) {
	t.index[id] = len(t.records)
	t.records = append(t.records, core.Record{ID: id, Data: doc})
}

// MemoryDriver keeps every table in process memory. Nothing survives the
// driver.
type MemoryDriver struct {
	mu     sync.RWMutex
	tables map[string]*MemoryTable
	order  []string
	logger *zap.Logger
}

// NewMemoryDriver creates an empty in-memory driver.
func NewMemoryDriver(logger *zap.Logger) *MemoryDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryDriver{
		tables: make(map[string]*MemoryTable),
		logger: logger,
	}
}

var _ Driver = (*MemoryDriver)(nil)

// Table returns the named table, creating it on first reference.
func (d *MemoryDriver) Table(name string) (Table, bool, error) {
	d.mu.RLock()
	t, ok := d.tables[name]
	d.mu.RUnlock()
	if ok {
		return t, false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tables[name]; ok {
		return t, false, nil
	}
	t = NewMemoryTable(name)
	d.tables[name] = t
	d.order = append(d.order, name)
	d.logger.Debug("Created in-memory table", zap.String("collection", name))
	return t, true, nil
}

// Lookup returns the named table without creating it.
func (d *MemoryDriver) Lookup(name string) (Table, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tables[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// Tables lists table names in creation order.
func (d *MemoryDriver) Tables(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out, nil
}

// Close drops every table.
func (d *MemoryDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables = make(map[string]*MemoryTable)
	d.order = nil
	return nil
}
