package runner

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-agg-engine/internal/model"
	"go-agg-engine/internal/store"
	"go-agg-engine/pkg/utils"
)

// outputs is the shared manager for per-job export directories.
var outputs = utils.NewOutputManager("")

// SetOutputDir points the export layer at a different base directory.
func SetOutputDir(dir string) {
	outputs = utils.NewOutputManager(dir)
}

// ExportResults writes the finalized groups to every configured target and
// registers the produced files with the store.
func ExportResults(ctx context.Context, jobID string, spec *model.Export, results []model.GroupResult) []model.ExportResult {
	var out []model.ExportResult

	if spec.File != "" {
		out = append(out, exportToFile(jobID, spec.File, results))
	}
	if spec.DB != "" {
		out = append(out, exportToSQLite(ctx, jobID, spec.DB, results))
	}
	// No target configured at all: default CSV so results survive the run
	if spec.File == "" && spec.DB == "" {
		name := fmt.Sprintf("results_%s.csv", time.Now().Format("2006-01-02_15-04-05"))
		out = append(out, exportToFile(jobID, name, results))
	}
	return out
}

// exportToFile writes results as CSV or JSON depending on the extension.
func exportToFile(jobID, fileName string, results []model.GroupResult) model.ExportResult {
	path, err := outputs.FilePath(jobID, fileName)
	if err == nil {
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".json":
			err = writeJSON(jobID, path, results)
		default:
			err = writeCSV(path, results)
		}
	}

	result := model.ExportResult{
		Type:        outputs.FileType(fileName),
		Path:        path,
		RecordCount: len(results),
		Success:     err == nil,
		Timestamp:   time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}

	size, _ := outputs.FileSize(path)
	store.SaveOutputFile(jobID, fileName, path, result.Type, size)
	return result
}

// writeCSV writes one row per group with a stable metric column order.
func writeCSV(path string, results []model.GroupResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Collect all metric names across groups for the header
	metricSet := make(map[string]bool)
	for _, r := range results {
		for name := range r.Metrics {
			metricSet[name] = true
		}
	}
	var metricNames []string
	for name := range metricSet {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)

	header := append([]string{"group_key", "record_count"}, metricNames...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range results {
		row := []string{r.GroupKey, strconv.FormatInt(r.RecordCount, 10)}
		for _, name := range metricNames {
			if v, ok := r.Metrics[name]; ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// writeJSON writes the groups with export metadata, indented like the API.
func writeJSON(jobID, path string, results []model.GroupResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	return encoder.Encode(map[string]interface{}{
		"export_info": map[string]interface{}{
			"job_id":       jobID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(results),
		},
		"data": results,
	})
}

// exportToSQLite writes results into a dedicated SQLite database in the
// job's output directory, one row per group.
func exportToSQLite(ctx context.Context, jobID, table string, results []model.GroupResult) model.ExportResult {
	fileName := table + ".db"
	result := model.ExportResult{
		Type:      "database",
		Path:      table,
		Timestamp: time.Now(),
	}

	path, err := outputs.FilePath(jobID, fileName)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer db.Close()

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		group_key TEXT,
		group_values TEXT,
		metrics TEXT,
		record_count INTEGER
	);`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		result.Error = err.Error()
		return result
	}

	insert := fmt.Sprintf(`INSERT INTO %q (group_key, group_values, metrics, record_count) VALUES (?, ?, ?, ?)`, table)
	for _, r := range results {
		valuesJSON, _ := json.Marshal(r.GroupValues)
		metricsJSON, _ := json.Marshal(r.Metrics)
		if _, err := db.ExecContext(ctx, insert, r.GroupKey, valuesJSON, metricsJSON, r.RecordCount); err != nil {
			result.Error = err.Error()
			return result
		}
		result.RecordCount++
	}

	result.Success = true
	size, _ := outputs.FileSize(path)
	store.SaveOutputFile(jobID, fileName, path, "database", size)
	return result
}
