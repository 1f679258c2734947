// Package sqlite provides a persistence.Driver backed by a SQLite database.
// Every collection shares one documents table; records are stored as JSON
// and queries are evaluated by the same processor the in-memory driver uses,
// with equality predicates pushed into SQL to narrow the scan.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/asaidimu/go-docstore/core/persistence"
	"go.uber.org/zap"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS collections (
	seq  INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	UNIQUE (collection, id)
);
`

// dbRunner is satisfied by both *sql.DB and *sql.Tx, so reads and writes can
// run inside or outside a transaction.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Driver stores collections in a SQLite database.
type Driver struct {
	db     *sql.DB
	logger *zap.Logger

	mu    sync.Mutex
	known map[string]*table
}

var _ persistence.Driver = (*Driver)(nil)

// Open opens (or creates) the database at path and prepares its schema. Use
// ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Driver, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// One connection serializes writers and keeps ":memory:" databases whole.
	db.SetMaxOpenConns(1)

	d, err := New(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an open database and prepares its schema.
func New(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Debug("SQLite schema ready")
	return &Driver{
		db:     db,
		logger: logger,
		known:  make(map[string]*table),
	}, nil
}

// Table returns the named collection, registering it on first reference.
// A failed registration is not cached, so the next call retries it.
func (d *Driver) Table(name string) (persistence.Table, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.known[name]; ok {
		return t, false, nil
	}

	res, err := d.db.Exec(`INSERT OR IGNORE INTO collections (name) VALUES (?)`, name)
	if err != nil {
		d.logger.Error("Failed to register collection", zap.String("collection", name), zap.Error(err))
		return nil, false, fmt.Errorf("failed to register collection %s: %w", name, err)
	}
	t := &table{name: name, db: d.db, logger: d.logger}
	d.known[name] = t

	n, err := res.RowsAffected()
	return t, err == nil && n == 1, nil
}

// Lookup returns the named collection if it has been registered, by this
// process or an earlier one.
func (d *Driver) Lookup(name string) (persistence.Table, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.known[name]; ok {
		return t, true
	}

	var one int
	err := d.db.QueryRow(`SELECT 1 FROM collections WHERE name = ?`, name).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return nil, false
	case err != nil:
		// Hand back the table so the caller's next statement reports the error.
		d.logger.Error("Failed to look up collection", zap.String("collection", name), zap.Error(err))
		return &table{name: name, db: d.db, logger: d.logger}, true
	}

	t := &table{name: name, db: d.db, logger: d.logger}
	d.known[name] = t
	return t, true
}

// Tables lists registered collections in registration order.
func (d *Driver) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan collection name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning collections: %w", err)
	}
	return names, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}
