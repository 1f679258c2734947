package persistence

import (
	"github.com/asaidimu/go-docstore/core"
)

// Snapshot is the ordered result of a query. Its records are copies; changing
// them does not change the store.
type Snapshot struct {
	Records []core.Record `json:"records"`
}

// Count returns the number of records.
func (s *Snapshot) Count() int {
	return len(s.Records)
}

// IsEmpty reports whether the snapshot holds no records.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Records) == 0
}

// IDs returns the record identifiers in result order.
func (s *Snapshot) IDs() []string {
	out := make([]string, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.ID
	}
	return out
}

// Documents returns the field maps in result order.
func (s *Snapshot) Documents() []core.Document {
	out := make([]core.Document, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Data
	}
	return out
}

// DocumentSnapshot is the result of reading one record. A missing record is a
// snapshot whose Exists reports false.
type DocumentSnapshot struct {
	id     string
	data   core.Document
	exists bool
}

// ID returns the id that was read, whether or not the record exists.
func (d *DocumentSnapshot) ID() string { return d.id }

// Exists reports whether the record was present when read.
func (d *DocumentSnapshot) Exists() bool { return d.exists }

// Data returns the record's fields, or nil when it does not exist.
func (d *DocumentSnapshot) Data() core.Document {
	if !d.exists {
		return nil
	}
	return d.data
}

// Get returns one field. It reports false for missing records and fields.
func (d *DocumentSnapshot) Get(field string) (any, bool) {
	if !d.exists {
		return nil, false
	}
	return d.data.Get(field)
}

// Record returns the snapshot as a record.
func (d *DocumentSnapshot) Record() (core.Record, bool) {
	if !d.exists {
		return core.Record{}, false
	}
	return core.Record{ID: d.id, Data: d.data}, true
}
