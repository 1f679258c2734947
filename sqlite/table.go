package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/persistence"
	"github.com/asaidimu/go-docstore/core/query"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// table is one collection's view of the documents table.
type table struct {
	name   string
	db     *sql.DB
	logger *zap.Logger
}

var (
	_ persistence.Table    = (*table)(nil)
	_ persistence.Filterer = (*table)(nil)
)

func (t *table) Name() string {
	return t.name
}

func (t *table) Get(ctx context.Context, id string) (core.Document, bool, error) {
	doc, err := t.get(ctx, t.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (t *table) get(ctx context.Context, runner dbRunner, id string) (core.Document, error) {
	var data string
	err := runner.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, t.name, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read %s/%s: %w", t.name, id, err)
	}
	return decodeDocument(data)
}

func (t *table) Insert(ctx context.Context, id string, doc core.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	t.logger.Debug("Executing SQL INSERT", zap.String("collection", t.name), zap.String("id", id))
	_, err = t.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`, t.name, id, data)
	if err != nil {
		if isUniqueViolation(err) {
			return &core.DuplicateIDError{Collection: t.name, ID: id}
		}
		return fmt.Errorf("failed to insert %s/%s: %w", t.name, id, err)
	}
	return nil
}

func (t *table) Put(ctx context.Context, id string, doc core.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	t.logger.Debug("Executing SQL UPSERT", zap.String("collection", t.name), zap.String("id", id))
	_, err = t.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`,
		t.name, id, data)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", t.name, id, err)
	}
	return nil
}

func (t *table) Merge(ctx context.Context, id string, patch core.Document) (core.Document, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := t.get(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &core.NotFoundError{Collection: t.name, ID: id}
	}
	if err != nil {
		return nil, err
	}

	merged := current.Merge(patch)
	data, err := encodeDocument(merged)
	if err != nil {
		return nil, err
	}

	if err := t.update(ctx, tx, id, data); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit merge of %s/%s: %w", t.name, id, err)
	}

	// Decode what was stored so number types match a later Get.
	return decodeDocument(data)
}

func (t *table) update(ctx context.Context, runner dbRunner, id, data string) error {
	t.logger.Debug("Executing SQL UPDATE", zap.String("collection", t.name), zap.String("id", id))
	if _, err := runner.ExecContext(ctx,
		`UPDATE documents SET data = ? WHERE collection = ? AND id = ?`, data, t.name, id); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", t.name, id, err)
	}
	return nil
}

func (t *table) Delete(ctx context.Context, id string) (bool, error) {
	t.logger.Debug("Executing SQL DELETE", zap.String("collection", t.name), zap.String("id", id))
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, t.name, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", t.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", t.name, id, err)
	}
	return n > 0, nil
}

func (t *table) All(ctx context.Context) iter.Seq2[core.Record, error] {
	return t.Filter(ctx, nil)
}

// Filter scans the collection with the translatable predicates applied in
// SQL. The rows are read in full before the first yield.
func (t *table) Filter(ctx context.Context, predicates []query.Predicate) iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		sqlQuery, params := buildScan(t.name, predicates)
		t.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery), zap.Any("params", params))

		rows, err := t.db.QueryContext(ctx, sqlQuery, params...)
		if err != nil {
			yield(core.Record{}, fmt.Errorf("failed to execute SELECT query: %w", err))
			return
		}
		records, err := readRecords(rows)
		if err != nil {
			yield(core.Record{}, err)
			return
		}

		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
