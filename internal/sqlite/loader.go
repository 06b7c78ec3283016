// This file implements JSONL loading on Attach.
package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

type tableMapping struct {
	file    string
	table   string
	columns []string
	// jsonColumns hold arbitrary JSON values and are stored as JSON text.
	jsonColumns map[string]bool
}

// jsonlTableMapping maps JSONL filenames to their SQLite tables and columns.
var jsonlTableMapping = []tableMapping{
	{
		file:        optionsJSONL,
		table:       "options",
		columns:     []string{"option_id", "option_name", "option_value", "autoload"},
		jsonColumns: map[string]bool{"option_value": true},
	},
	{
		file:    postsJSONL,
		table:   "posts",
		columns: []string{"id", "post_title", "post_type", "post_status", "post_date"},
	},
	{
		file:    postMetaJSONL,
		table:   "postmeta",
		columns: []string{"meta_id", "post_id", "meta_key", "meta_value"},
	},
}

func mappingFor(table string) (tableMapping, bool) {
	for _, m := range jsonlTableMapping {
		if m.table == table {
			return m, true
		}
	}
	return tableMapping{}, false
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the matching table. Loading is transactional: all succeed or the
// database stays empty. Malformed lines and records that violate
// constraints are skipped; unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, m.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", m.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, m, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", m.file, m.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a table. Only columns in
// the mapping are extracted; a missing column falls back to the table
// default.
func insertRecords(tx *sql.Tx, m tableMapping, records []json.RawMessage) error {
	for _, rec := range records {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		var cols []string
		var args []any
		for _, col := range m.columns {
			raw, ok := obj[col]
			if !ok {
				continue
			}
			if m.jsonColumns[col] {
				cols = append(cols, col)
				args = append(args, string(raw))
				continue
			}
			val, err := decodeScalar(raw)
			if err != nil || val == nil {
				continue
			}
			cols = append(cols, col)
			args = append(args, val)
		}
		if len(cols) == 0 {
			continue
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			m.table, strings.Join(cols, ", "), placeholders)
		if _, err := tx.Exec(insertSQL, args...); err != nil {
			// Constraint violations (duplicate option names, bad IDs) are skipped.
			continue
		}
	}
	return nil
}

// decodeScalar decodes a JSON scalar, keeping integers as int64. Objects and
// arrays are re-encoded as JSON text.
func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		return x.Float64()
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case map[string]any, []any:
		return string(raw), nil
	}
	return v, nil
}
