package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-agg-engine/internal/engine"
	"go-agg-engine/internal/model"
	"go-agg-engine/internal/source"
	"go-agg-engine/internal/store"
	"go-agg-engine/pkg/utils"
)

// ------------------- Job Runner -------------------

// Run executes one aggregation job end to end: load the source, run the
// scatter/merge engine, persist the results and export them. Phase
// transitions are mirrored into the job store as they happen.
func Run(ctx context.Context, jobID string, spec model.JobSpec) (err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting aggregation job: %s\n", jobID)

	store.UpdateJobStatus(jobID, "running")

	// Defer function to handle status updates on completion/error
	defer func() {
		Unregister(jobID)
		if err == nil {
			return
		}
		if errors.Is(err, engine.ErrCancelled) {
			store.UpdateJobStatus(jobID, "cancelled")
			return
		}
		store.UpdateJobStatus(jobID, "failed")
		store.SaveJobError(jobID, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDuration(spec.JobTimeout))
	defer cancel()

	// Register so PATCH /jobs/{id}/cancel can trip this context
	Register(jobID, cancel)

	// --- SOURCE LOADING ---
	fmt.Printf("📥 Loading source (%s) for job %s...\n", spec.Source.Type, jobID)
	src, err := source.Build(spec.Source)
	if err != nil {
		return fmt.Errorf("source load failed: %w", err)
	}
	fmt.Printf("✅ Source loaded: %d rows\n", src.NumRows())

	// --- ENGINE RUN ---
	cfg := engine.ConfigFromSpec(spec.Engine)
	job, err := engine.NewJob(jobID, src, spec.Query, cfg, engine.WithPhaseHook(func(p model.Phase) {
		trackPhase(jobID, p, spec.Logging)
	}))
	if err != nil {
		return fmt.Errorf("job setup failed: %w", err)
	}

	result, err := job.Run(ctx)
	if err != nil {
		return err
	}

	results, err := result.Collect()
	if err != nil {
		return err
	}
	fmt.Printf("📊 Aggregation complete: %d groups\n", len(results))

	if err := store.SaveResults(jobID, results); err != nil {
		return fmt.Errorf("failed to persist results: %w", err)
	}

	// --- EXPORT ---
	if spec.Export != nil {
		exported := ExportResults(ctx, jobID, spec.Export, results)
		for _, r := range exported {
			if r.Success {
				fmt.Printf("✅ Export: %d records exported to %s (%s)\n", r.RecordCount, r.Path, r.Type)
			} else {
				fmt.Printf("❌ Export failed: %s\n", r.Error)
			}
		}
	}

	duration := time.Since(start)
	fmt.Printf("🏁 Job %s completed in %v\n", jobID, duration)

	store.UpdateJobStatus(jobID, "completed")
	return nil
}

// trackPhase mirrors an engine phase transition into the job store.
func trackPhase(jobID string, p model.Phase, verbose bool) {
	if verbose {
		fmt.Printf("🔄 Job %s entered phase: %s\n", jobID, p)
	}
	store.SavePhase(jobID, p, "")
	if status, ok := phaseStatus[p]; ok {
		store.UpdateJobStatus(jobID, status)
	}
}

// phaseStatus maps engine phases to coarse job statuses shown in the API.
var phaseStatus = map[model.Phase]string{
	model.PhaseScatter:   "scattering",
	model.PhaseMerge:     "merging",
	model.PhaseDone:      "completed",
	model.PhaseFailed:    "failed",
	model.PhaseCancelled: "cancelled",
}
