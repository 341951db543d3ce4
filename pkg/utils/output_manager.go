package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager hands out per-job output paths under a single base directory
type OutputManager struct {
	BaseDir string
}

func NewOutputManager(baseDir string) *OutputManager {
	if baseDir == "" {
		baseDir = "outputs"
	}
	return &OutputManager{BaseDir: baseDir}
}

// JobDir creates (if needed) and returns the output directory for one job
func (om *OutputManager) JobDir(jobID string) (string, error) {
	dir := filepath.Join(om.BaseDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create job output dir: %w", err)
	}
	return dir, nil
}

// FilePath returns the full path for a named file inside the job's directory
func (om *OutputManager) FilePath(jobID, fileName string) (string, error) {
	dir, err := om.JobDir(jobID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// DownloadURL builds the API download path for a job file
func (om *OutputManager) DownloadURL(jobID, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", jobID, fileName)
}

// FileType classifies a file by extension
func (om *OutputManager) FileType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".db", ".sqlite":
		return "database"
	default:
		return "file"
	}
}

// FileSize returns the size of a file in bytes
func (om *OutputManager) FileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
