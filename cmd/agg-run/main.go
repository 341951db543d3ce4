package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"go-agg-engine/internal/engine"
	"go-agg-engine/internal/model"
	"go-agg-engine/internal/source"
	"go-agg-engine/pkg/utils"
)

// agg-run executes a single aggregation job from a JSON spec file and prints
// the groups, without the API server or the job store.
func main() {
	specPath := flag.String("spec", "", "path to job spec JSON file")
	asJSON := flag.Bool("json", false, "print results as JSON")
	flag.Parse()

	if *specPath == "" {
		fmt.Fprintln(os.Stderr, "usage: agg-run -spec job.json [-json]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to read spec: %v\n", err)
		os.Exit(1)
	}

	var spec model.JobSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid spec JSON: %v\n", err)
		os.Exit(1)
	}

	jobID := uuid.New().String()
	fmt.Printf("🚀 Running job %s\n", jobID)
	start := time.Now()

	src, err := source.Build(spec.Source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Source load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Source loaded: %d rows\n", src.NumRows())

	ctx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(spec.JobTimeout))
	defer cancel()

	job, err := engine.NewJob(jobID, src, spec.Query, engine.ConfigFromSpec(spec.Engine))
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Job setup failed: %v\n", err)
		os.Exit(1)
	}

	result, err := job.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Job failed: %v\n", err)
		os.Exit(1)
	}

	results, err := result.Collect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Result assembly failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(results)
	} else {
		for _, r := range results {
			fmt.Printf("%s  rows=%d  %v\n", r.GroupKey, r.RecordCount, r.Metrics)
		}
	}

	fmt.Printf("🏁 %d groups in %v\n", len(results), time.Since(start))
}
