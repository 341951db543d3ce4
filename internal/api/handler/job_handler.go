package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-agg-engine/internal/model"
	"go-agg-engine/internal/runner"
	"go-agg-engine/internal/store"
)

// CreateJob creates and starts a new aggregation job
// @Summary Create a new aggregation job
// @Description Create and start a new group-by aggregation job with the provided configuration
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body model.JobSpec true "Job configuration"
// @Success 200 {object} map[string]interface{} "Job created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [post]
func CreateJob(w http.ResponseWriter, r *http.Request) {
	var spec model.JobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// 1. Validate payload
	if spec.Source.Type == "" {
		http.Error(w, "A source is required", http.StatusBadRequest)
		return
	}
	if len(spec.Query.GroupBy) == 0 {
		http.Error(w, "At least one group-by column is required", http.StatusBadRequest)
		return
	}
	if len(spec.Query.Aggregates) == 0 {
		http.Error(w, "At least one aggregate is required", http.StatusBadRequest)
		return
	}

	// 2. Generate job ID
	jobID := uuid.New().String()

	// 3. Save job to DB
	if err := store.SaveJob(jobID, spec); err != nil {
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	// 4. Start the job asynchronously
	go func() {
		runner.Run(context.Background(), jobID, spec)
	}()

	// 5. Return response
	resp := map[string]interface{}{
		"message":   "Job created successfully!",
		"jobID":     jobID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListJobs retrieves all aggregation jobs
// @Summary List all jobs
// @Description Get a list of all aggregation jobs with their current status
// @Tags jobs
// @Accept json
// @Produce json
// @Success 200 {array} map[string]interface{} "List of jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// GetJob retrieves a specific aggregation job
// @Summary Get job
// @Description Retrieve the spec and status of a specific job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job details"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id} [get]
func GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "")
	if !ok {
		return
	}

	spec, status, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"status": status,
		"spec":   spec,
	})
}

// GetJobErrors retrieves errors for a job
// @Summary Get job errors
// @Description Retrieve all errors recorded during job execution
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job errors"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/errors [get]
func GetJobErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/errors")
	if !ok {
		return
	}

	errors, err := store.GetJobErrors(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"errors": errors,
		"count":  len(errors),
	})
}

// GetJobResults retrieves the finalized groups for a job
// @Summary Get job results
// @Description Retrieve the aggregated groups produced by a completed job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job results"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/results [get]
func GetJobResults(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/results")
	if !ok {
		return
	}

	results, err := store.GetResults(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve results", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id":  jobID,
		"results": results,
		"count":   len(results),
	})
}

// GetJobPhases retrieves the phase log for a job
// @Summary Get job phases
// @Description Retrieve the engine phase transitions recorded for a job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Phase log"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/phases [get]
func GetJobPhases(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/phases")
	if !ok {
		return
	}

	phases, err := store.GetPhases(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve phases", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"phases": phases,
		"count":  len(phases),
	})
}

// GetJobFiles lists the exported files for a job
// @Summary Get job output files
// @Description Retrieve the exported files registered for a job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Output files"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/files [get]
func GetJobFiles(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/files")
	if !ok {
		return
	}

	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"files":  files,
		"count":  len(files),
	})
}

// CancelJob trips the cancellation token of a running job
// @Summary Cancel job
// @Description Request cooperative cancellation of a running job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Cancellation requested"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 404 {object} map[string]interface{} "Job not running"
// @Router /jobs/{id}/cancel [patch]
func CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/cancel")
	if !ok {
		return
	}

	if !runner.Cancel(jobID) {
		http.Error(w, "Job is not running", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Cancellation requested",
		"job_id":  jobID,
		"status":  "cancelling",
	})
}

// DeleteJob removes a job and all its recorded data
// @Summary Delete job
// @Description Delete a job, its errors, phase log, results and file records
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job deleted"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id} [delete]
func DeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "")
	if !ok {
		return
	}

	if err := store.DeleteJob(jobID); err != nil {
		http.Error(w, "Failed to delete job", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Job deleted",
		"job_id":  jobID,
	})
}

// DownloadFile serves an exported file by job ID and file name
// @Summary Download an exported file
// @Description Download one of the files exported by a completed job
// @Tags downloads
// @Produce octet-stream
// @Param id path string true "Job ID"
// @Param file path string true "File name"
// @Success 200 {file} binary "File content"
// @Failure 400 {object} map[string]interface{} "Invalid path"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{id}/{file} [get]
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	prefix := "/api/v1/download/"

	if !strings.HasPrefix(path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	parts := strings.SplitN(path[len(prefix):], "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		http.Error(w, "Job ID and file name are required", http.StatusBadRequest)
		return
	}
	jobID, fileName := parts[0], parts[1]

	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve files", http.StatusInternalServerError)
		return
	}

	for _, f := range files {
		if f["file_name"] == fileName {
			http.ServeFile(w, r, f["file_path"].(string))
			return
		}
	}
	http.Error(w, "File not found", http.StatusNotFound)
}

// jobIDFromPath extracts the job ID between the jobs prefix and an optional
// action suffix, writing the error response itself when the path is bad.
func jobIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	path := r.URL.Path
	prefix := "/api/v1/jobs/"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}

	jobID := path[len(prefix) : len(path)-len(suffix)]
	if jobID == "" || strings.Contains(jobID, "/") {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return "", false
	}
	return jobID, true
}
