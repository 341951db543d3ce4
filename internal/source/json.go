package source

import (
	"encoding/json"
	"fmt"
	"io"

	"go-agg-engine/internal/model"
)

// loadJSON reads a JSON array of objects (or a single object) from a file or
// API URL into records.
func loadJSON(spec model.SourceSpec) ([]model.GenericRecord, error) {
	reader, err := openSource(spec)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON body: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(bodyBytes, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	var records []model.GenericRecord
	switch data := raw.(type) {
	case []interface{}:
		for i, item := range data {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("JSON element %d is not an object", i)
			}
			records = append(records, model.GenericRecord(m))
		}
	case map[string]interface{}:
		records = append(records, model.GenericRecord(data))
	default:
		return nil, fmt.Errorf("unexpected JSON structure in %s", spec.URL)
	}

	fmt.Printf("🌐 JSON load done: %d records read from %s\n", len(records), spec.URL)
	return records, nil
}
