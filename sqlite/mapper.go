package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/utils"
)

// encodeDocument serializes a document for the data column.
func encodeDocument(doc core.Document) (string, error) {
	if doc == nil {
		doc = core.Document{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(b), nil
}

// decodeDocument parses the data column. Integral numbers come back as
// int64, the rest as float64.
func decodeDocument(data string) (core.Document, error) {
	return utils.DecodeDocument([]byte(data))
}

// readRecords drains rows of (id, data) into records. The rows are closed
// before returning so callers can issue further statements on the single
// connection.
func readRecords(rows *sql.Rows) ([]core.Record, error) {
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		records = append(records, core.Record{ID: id, Data: doc})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return records, nil
}
