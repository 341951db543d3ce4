package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-agg-engine/internal/model"
)

var db *sql.DB

// InitDB opens the job database and creates the schema if needed.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS job_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS job_phases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			phase TEXT,
			note TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS job_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			group_key TEXT,
			group_values TEXT,
			metrics TEXT,
			record_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS output_files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			file_name TEXT,
			file_path TEXT,
			file_type TEXT,
			file_size INTEGER,
			created_at DATETIME
		);`,
	}

	for _, ddl := range tables {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// SaveJob stores a new aggregation job
func SaveJob(jobID string, spec model.JobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO jobs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, specJSON, "pending", now, now)
	return err
}

// SaveJobError records an error for a job
func SaveJobError(jobID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO job_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, err.Error(), now)
	return e
}

// GetJobErrors returns recorded errors for a job, newest first
func GetJobErrors(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&msg, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"error":     msg,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// ListJobs returns all jobs with basic info
func ListJobs() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return jobs, rows.Err()
}

// GetJob fetches full job spec and status
func GetJob(jobID string) (model.JobSpec, string, error) {
	var specJSON string
	var status string

	err := db.QueryRow(`SELECT spec, status FROM jobs WHERE id = ?`, jobID).Scan(&specJSON, &status)
	if err != nil {
		return model.JobSpec{}, "", err
	}

	var spec model.JobSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return model.JobSpec{}, "", err
	}
	return spec, status, nil
}

// UpdateJobStatus updates job status
func UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// SavePhase appends one phase transition to the job's phase log
func SavePhase(jobID string, phase model.Phase, note string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO job_phases (job_id, phase, note, created_at) VALUES (?, ?, ?, ?)`,
		jobID, string(phase), note, now)
	return err
}

// GetPhases returns the phase log for a job in transition order
func GetPhases(jobID string) ([]model.PhaseEvent, error) {
	rows, err := db.Query(`SELECT phase, note, created_at FROM job_phases WHERE job_id = ? ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.PhaseEvent
	for rows.Next() {
		var ev model.PhaseEvent
		var phase string
		if err := rows.Scan(&phase, &ev.Note, &ev.At); err != nil {
			return nil, err
		}
		ev.JobID = jobID
		ev.Phase = model.Phase(phase)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// SaveResults persists the finalized groups for a completed job
func SaveResults(jobID string, results []model.GroupResult) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO job_results (job_id, group_key, group_values, metrics, record_count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		valuesJSON, err := json.Marshal(r.GroupValues)
		if err != nil {
			tx.Rollback()
			return err
		}
		metricsJSON, err := json.Marshal(r.Metrics)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(jobID, r.GroupKey, valuesJSON, metricsJSON, r.RecordCount); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetResults returns the persisted groups for a job
func GetResults(jobID string) ([]model.GroupResult, error) {
	rows, err := db.Query(`SELECT group_key, group_values, metrics, record_count FROM job_results WHERE job_id = ? ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.GroupResult
	for rows.Next() {
		var r model.GroupResult
		var valuesJSON, metricsJSON string
		if err := rows.Scan(&r.GroupKey, &valuesJSON, &metricsJSON, &r.RecordCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(valuesJSON), &r.GroupValues); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metricsJSON), &r.Metrics); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SaveOutputFile registers one exported file for a job
func SaveOutputFile(jobID, fileName, filePath, fileType string, fileSize int64) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO output_files (job_id, file_name, file_path, file_type, file_size, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, fileName, filePath, fileType, fileSize, now)
	return err
}

// GetOutputFiles returns all registered files for a job
func GetOutputFiles(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, file_name, file_path, file_type, file_size, created_at FROM output_files WHERE job_id = ? ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []map[string]interface{}
	for rows.Next() {
		var id int
		var name, path, ftype string
		var size int64
		var createdAt time.Time
		if err := rows.Scan(&id, &name, &path, &ftype, &size, &createdAt); err != nil {
			return nil, err
		}
		files = append(files, map[string]interface{}{
			"id":        id,
			"file_name": name,
			"file_path": path,
			"file_type": ftype,
			"file_size": size,
			"createdAt": createdAt,
		})
	}
	return files, rows.Err()
}

// DeleteJob removes a job and everything recorded for it
func DeleteJob(jobID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, q := range []string{
		`DELETE FROM job_errors WHERE job_id = ?`,
		`DELETE FROM job_phases WHERE job_id = ?`,
		`DELETE FROM job_results WHERE job_id = ?`,
		`DELETE FROM output_files WHERE job_id = ?`,
		`DELETE FROM jobs WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, jobID); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
