package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-agg-engine/internal/model"
)

// Config holds the validated knobs for one aggregation run. Zero values for
// BatchSize, PartitionStrategy and PoolSize pick the defaults; WorkerCount
// and ShardCount must be set.
type Config struct {
	WorkerCount       int
	ShardCount        int
	PartitionStrategy string
	BatchSize         int
	MaxGroups         int
	PoolSize          int
}

// ConfigFromSpec lifts the job-spec engine block into a Config, applying the
// service defaults for anything left at zero.
func ConfigFromSpec(ec model.EngineConfig) Config {
	cfg := Config{
		WorkerCount:       ec.WorkerCount,
		ShardCount:        ec.ShardCount,
		PartitionStrategy: ec.PartitionStrategy,
		BatchSize:         ec.BatchSize,
		MaxGroups:         ec.MaxGroups,
		PoolSize:          ec.PoolSize,
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 4
	}
	if cfg.ShardCount == 0 {
		cfg.ShardCount = 16
	}
	return cfg
}

// Option tweaks a Job at construction time.
type Option func(*Job)

// WithKeyFunc replaces the default column-tuple key extraction.
func WithKeyFunc(fn KeyFunc) Option {
	return func(j *Job) { j.plan.keyFn = fn }
}

// WithPhaseHook installs a callback invoked on every phase transition, after
// the phase is recorded. Hooks run on the coordinating goroutine.
func WithPhaseHook(fn func(model.Phase)) Option {
	return func(j *Job) { j.hook = fn }
}

// Job owns one scatter/merge aggregation run over one row source. A Job is
// single-use: Run may be called once.
type Job struct {
	ID   string
	src  RowSource
	plan *plan
	cfg  Config

	mu    sync.Mutex
	phase model.Phase
	hook  func(model.Phase)
}

// NewJob validates the query and config and compiles the aggregate plan.
func NewJob(id string, src RowSource, query model.QuerySpec, cfg Config, opts ...Option) (*Job, error) {
	if src == nil {
		return nil, errors.New("nil row source")
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", cfg.WorkerCount)
	}
	if !ValidShardCount(cfg.ShardCount) {
		return nil, fmt.Errorf("shard count must be a power of two >= 1, got %d", cfg.ShardCount)
	}

	p, err := compilePlan(query)
	if err != nil {
		return nil, err
	}

	j := &Job{ID: id, src: src, plan: p, cfg: cfg, phase: model.PhasePending}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Phase returns the job's current phase.
func (j *Job) Phase() model.Phase {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.phase
}

func (j *Job) setPhase(p model.Phase) {
	j.mu.Lock()
	if !j.phase.CanTransition(p) {
		j.mu.Unlock()
		return
	}
	j.phase = p
	hook := j.hook
	j.mu.Unlock()
	if hook != nil {
		hook(p)
	}
}

// Run executes the job: scatter across workers, barrier, parallel per-shard
// merge, result assembly. It returns the assembled result or the first
// error, never both; a tripped cancellation token yields ErrCancelled and no
// partial result is ever observable.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	parts, err := PartitionRows(j.src, j.cfg.WorkerCount, j.cfg.PartitionStrategy)
	if err != nil {
		j.setPhase(model.PhaseFailed)
		return nil, err
	}

	pl, err := newPool(j.cfg.PoolSize)
	if err != nil {
		j.setPhase(model.PhaseFailed)
		return nil, err
	}
	defer pl.release()

	// ---- scatter ----
	j.setPhase(model.PhaseScatter)
	scatterCtx, cancelScatter := context.WithCancel(ctx)
	defer cancelScatter()
	ferr := &firstError{cancel: cancelScatter}

	tasks := make([]*scatterTask, len(parts))
	var latch sync.WaitGroup
	for i, part := range parts {
		t := newScatterTask(i, part, j.src, j.plan, j.cfg.ShardCount, j.cfg.BatchSize, j.cfg.MaxGroups)
		tasks[i] = t
		pl.submit(&latch, func() error { return t.run(scatterCtx) }, ferr.report)
	}

	// The one synchronization point in the pipeline: every worker must have
	// sealed its tables before any merge task reads anything.
	latch.Wait()
	if err := j.finishPhase(ctx, ferr); err != nil {
		return nil, err
	}
	j.setPhase(model.PhaseBarrier)

	// ---- merge ----
	j.setPhase(model.PhaseMerge)
	mergeCtx, cancelMerge := context.WithCancel(ctx)
	defer cancelMerge()
	merr := &firstError{cancel: cancelMerge}

	merged := make([]*ShardTable, j.cfg.ShardCount)
	var mergeLatch sync.WaitGroup
	for s := 0; s < j.cfg.ShardCount; s++ {
		shardIdx := s
		pl.submit(&mergeLatch, func() error {
			out, err := mergeShard(mergeCtx, shardIdx, tasks, j.plan, j.cfg.MaxGroups)
			if err != nil {
				return err
			}
			merged[shardIdx] = out // disjoint index, no lock needed
			return nil
		}, merr.report)
	}
	mergeLatch.Wait()
	if err := j.finishPhase(ctx, merr); err != nil {
		return nil, err
	}

	j.setPhase(model.PhaseDone)
	return newResult(j.plan, merged), nil
}

// finishPhase turns the phase outcome into the job's terminal state, if any.
// Cancellation always wins over nothing, never over a real failure.
func (j *Job) finishPhase(ctx context.Context, f *firstError) error {
	err := f.get()
	if err == nil {
		if ctx.Err() == nil {
			return nil
		}
		// token tripped between polls, after every task completed
		err = ErrCancelled
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		j.setPhase(model.PhaseCancelled)
		return ErrCancelled
	}
	j.setPhase(model.PhaseFailed)
	return err
}
