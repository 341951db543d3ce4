package source

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"

	"go-agg-engine/internal/model"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// loadSQLite reads every row of the spec table into records. Column types
// come back through database/sql's generic scan, so numeric columns stay
// numeric for the engine's measure accessors.
func loadSQLite(spec model.SourceSpec) ([]model.GenericRecord, error) {
	if spec.Table == "" {
		return nil, fmt.Errorf("sqlite source needs a table")
	}
	if !identPattern.MatchString(spec.Table) {
		return nil, fmt.Errorf("invalid table name %q", spec.Table)
	}

	db, err := sql.Open("sqlite3", spec.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite source: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM %s`, spec.Table))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", spec.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []model.GenericRecord
	values := make([]interface{}, len(cols))
	scanArgs := make([]interface{}, len(cols))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("scan error at record %d: %w", len(records)+1, err)
		}
		rec := make(model.GenericRecord, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				rec[col] = string(v)
			default:
				rec[col] = v
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fmt.Printf("🗄️ SQLite load done: %d records read from %s.%s\n", len(records), spec.URL, spec.Table)
	return records, nil
}
