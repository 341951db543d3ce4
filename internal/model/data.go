package model

import "time"

// GroupResult represents one finalized group in the aggregation output
type GroupResult struct {
	GroupKey    string                 `json:"group_key"`
	GroupValues map[string]interface{} `json:"group_values"`
	Metrics     map[string]float64     `json:"metrics"` // e.g. max_temp, avg_temp
	RecordCount int64                  `json:"record_count"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "database", "csv", "json"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
