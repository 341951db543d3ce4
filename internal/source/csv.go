package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go-agg-engine/internal/model"
	"go-agg-engine/pkg/utils"
)

// loadCSV reads the whole CSV behind the spec URL into records. The first
// line is the header; cells are parsed into int/float/string.
func loadCSV(spec model.SourceSpec) ([]model.GenericRecord, error) {
	reader, err := openSource(spec)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	csvReader := csv.NewReader(reader)
	csvReader.LazyQuotes = true

	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range headers {
		// Clean header names: trim whitespace and remove ALL quotes
		cleanHeader := strings.TrimSpace(h)
		headers[i] = strings.ReplaceAll(cleanHeader, `"`, "")
	}

	var records []model.GenericRecord
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error at record %d: %w", len(records)+1, err)
		}
		rec := make(model.GenericRecord, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = utils.ParseValue(row[i])
			}
		}
		records = append(records, rec)
	}

	fmt.Printf("📄 CSV load done: %d records read from %s\n", len(records), spec.URL)
	return records, nil
}
