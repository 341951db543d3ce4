// Package source loads input rows from files, URLs or SQLite into the
// in-memory record source the engine consumes. The engine needs random
// access over a known extent, so every loader materializes its rows up
// front instead of streaming.
package source

import (
	"fmt"
	"strings"

	"go-agg-engine/internal/engine"
	"go-agg-engine/internal/model"
)

// Load materializes the records behind a source spec.
func Load(spec model.SourceSpec) ([]model.GenericRecord, error) {
	var (
		records []model.GenericRecord
		err     error
	)

	switch strings.ToLower(spec.Type) {
	case "inline", "":
		records = spec.Records
	case "csv":
		records, err = loadCSV(spec)
	case "json", "api":
		records, err = loadJSON(spec)
	case "sqlite":
		records, err = loadSQLite(spec)
	default:
		return nil, fmt.Errorf("unknown source type: %s", spec.Type)
	}
	if err != nil {
		return nil, err
	}

	if spec.Validation != nil {
		if err := ValidateRecords(records, spec.Validation); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Build loads the spec and wraps it as an engine row source.
func Build(spec model.SourceSpec) (engine.RowSource, error) {
	records, err := Load(spec)
	if err != nil {
		return nil, err
	}
	return engine.NewRecordSource(records), nil
}
