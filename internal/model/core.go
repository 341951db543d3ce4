package model

// GenericRecord is a schema-agnostic map for any data source
type GenericRecord map[string]interface{}

// AggregateSpec names one aggregate function applied to one measure column
type AggregateSpec struct {
	Func   string `json:"func"`             // sum, count, min, max, avg, first, last
	Column string `json:"column,omitempty"` // measure column; count works without one
}

// QuerySpec defines the group-by query the engine executes
type QuerySpec struct {
	GroupBy    []string        `json:"groupBy"`
	Aggregates []AggregateSpec `json:"aggregates"`
}

// EngineConfig holds the knobs for one aggregation run
type EngineConfig struct {
	WorkerCount       int    `json:"workerCount"`
	ShardCount        int    `json:"shardCount"`                  // power of two
	PartitionStrategy string `json:"partitionStrategy,omitempty"` // by-row-count, by-byte-size
	BatchSize         int    `json:"batchSize,omitempty"`         // rows between cancellation polls
	MaxGroups         int    `json:"maxGroups,omitempty"`         // per-table group cap, 0 = unlimited
	PoolSize          int    `json:"poolSize,omitempty"`          // execution pool size, 0 = CPU count
}

// ValidationRules defines pre-scatter checks for a source
type ValidationRules struct {
	RequiredFields []string           `json:"requiredFields"` // fields that must be present
	NumericFields  []string           `json:"numericFields"`  // fields that must be numeric
	MinValues      map[string]float64 `json:"minValues"`      // min allowed numeric values
	MaxValues      map[string]float64 `json:"maxValues"`      // optional max limits
}

// SourceSpec describes where the input rows come from
type SourceSpec struct {
	Type       string           `json:"type"` // inline, csv, json, api, sqlite
	URL        string           `json:"url,omitempty"`
	Table      string           `json:"table,omitempty"` // sqlite only
	Records    []GenericRecord  `json:"records,omitempty"`
	Validation *ValidationRules `json:"validation,omitempty"`
	Retry      *RetryConfig     `json:"retry,omitempty"` // http fetch retry only
}

// Export defines export targets
type Export struct {
	DB   string `json:"db,omitempty"`   // sqlite table name
	File string `json:"file,omitempty"` // e.g., results.csv or results.json
}

// JobSpec is the struct for POST /api/v1/jobs
type JobSpec struct {
	Source     SourceSpec   `json:"source"`
	Query      QuerySpec    `json:"query"`
	Engine     EngineConfig `json:"engine"`
	Export     *Export      `json:"export,omitempty"`
	JobTimeout string       `json:"jobTimeout,omitempty"` // e.g., "5m"
	Logging    bool         `json:"logging"`
}
