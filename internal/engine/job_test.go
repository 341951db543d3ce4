package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-agg-engine/internal/model"
)

func cityTemps() []model.GenericRecord {
	return []model.GenericRecord{
		{"city": "NYC", "temp": 23.0},
		{"city": "SFO", "temp": 32.0},
		{"city": "NYC", "temp": 21.0},
		{"city": "NYC", "temp": 22.0},
	}
}

func runJob(t *testing.T, records []model.GenericRecord, query model.QuerySpec, cfg Config) map[string]model.GroupResult {
	t.Helper()
	job, err := NewJob("test", NewRecordSource(records), query, cfg)
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.PhaseDone, job.Phase())

	rows, err := result.Collect()
	require.NoError(t, err)

	byKey := make(map[string]model.GroupResult, len(rows))
	for _, r := range rows {
		byKey[r.GroupKey] = r
	}
	require.Len(t, byKey, len(rows), "group keys must be unique")
	return byKey
}

func TestJobCityTemperatures(t *testing.T) {
	query := model.QuerySpec{
		GroupBy: []string{"city"},
		Aggregates: []model.AggregateSpec{
			{Func: "max", Column: "temp"},
			{Func: "avg", Column: "temp"},
			{Func: "count"},
		},
	}

	got := runJob(t, cityTemps(), query, Config{WorkerCount: 2, ShardCount: 2})
	require.Len(t, got, 2)

	nyc := got["NYC"]
	assert.Equal(t, 23.0, nyc.Metrics["max_temp"])
	assert.Equal(t, 22.0, nyc.Metrics["avg_temp"])
	assert.Equal(t, 3.0, nyc.Metrics["count"])
	assert.Equal(t, int64(3), nyc.RecordCount)
	assert.Equal(t, "NYC", nyc.GroupValues["city"])

	sfo := got["SFO"]
	assert.Equal(t, 32.0, sfo.Metrics["max_temp"])
	assert.Equal(t, 32.0, sfo.Metrics["avg_temp"])
	assert.Equal(t, int64(1), sfo.RecordCount)
}

// TestJobParallelismInvariance checks the load-bearing property of the whole
// design: results depend only on the data and the query, never on worker or
// shard counts.
func TestJobParallelismInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	records := make([]model.GenericRecord, 500)
	for i := range records {
		records[i] = model.GenericRecord{
			"region": fmt.Sprintf("r%d", rng.Intn(17)),
			"tier":   rng.Intn(3),
			// coarse values so ties are common and tie-breaks are exercised
			"amount": float64(rng.Intn(10)),
		}
	}

	query := model.QuerySpec{
		GroupBy: []string{"region", "tier"},
		Aggregates: []model.AggregateSpec{
			{Func: "sum", Column: "amount"},
			{Func: "min", Column: "amount"},
			{Func: "max", Column: "amount"},
			{Func: "avg", Column: "amount"},
			{Func: "first", Column: "amount"},
			{Func: "last", Column: "amount"},
			{Func: "count"},
		},
	}

	reference := runJob(t, records, query, Config{WorkerCount: 1, ShardCount: 1})

	for _, workers := range []int{1, 2, 4, 8} {
		for _, shards := range []int{1, 2, 4, 8, 16, 64} {
			t.Run(fmt.Sprintf("workers=%d_shards=%d", workers, shards), func(t *testing.T) {
				got := runJob(t, records, query, Config{WorkerCount: workers, ShardCount: shards})
				require.Len(t, got, len(reference))
				for key, want := range reference {
					assert.Equal(t, want.Metrics, got[key].Metrics, "group %q", key)
					assert.Equal(t, want.RecordCount, got[key].RecordCount, "group %q", key)
				}
			})
		}
	}
}

func TestJobByteSizePartitioning(t *testing.T) {
	query := model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "sum", Column: "temp"}},
	}

	reference := runJob(t, cityTemps(), query, Config{WorkerCount: 1, ShardCount: 1})
	got := runJob(t, cityTemps(), query, Config{
		WorkerCount:       3,
		ShardCount:        4,
		PartitionStrategy: PartitionByByteSize,
	})
	assert.Equal(t, reference["NYC"].Metrics, got["NYC"].Metrics)
	assert.Equal(t, reference["SFO"].Metrics, got["SFO"].Metrics)
}

func TestJobEmptyInput(t *testing.T) {
	query := model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}
	got := runJob(t, nil, query, Config{WorkerCount: 4, ShardCount: 8})
	assert.Empty(t, got)
}

func TestJobResultOrderDeterministic(t *testing.T) {
	query := model.QuerySpec{
		GroupBy:    []string{"region"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}
	records := make([]model.GenericRecord, 100)
	for i := range records {
		records[i] = model.GenericRecord{"region": fmt.Sprintf("r%d", i%23)}
	}

	var runs [][]string
	for run := 0; run < 3; run++ {
		job, err := NewJob("det", NewRecordSource(records), query, Config{WorkerCount: 4, ShardCount: 8})
		require.NoError(t, err)
		result, err := job.Run(context.Background())
		require.NoError(t, err)
		rows, err := result.Collect()
		require.NoError(t, err)

		keys := make([]string, len(rows))
		for i, r := range rows {
			keys[i] = r.GroupKey
		}
		runs = append(runs, keys)
	}
	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, runs[1], runs[2])
}

func TestNewJobValidation(t *testing.T) {
	query := model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}
	src := NewRecordSource(cityTemps())

	_, err := NewJob("x", nil, query, Config{WorkerCount: 1, ShardCount: 1})
	assert.Error(t, err)

	_, err = NewJob("x", src, query, Config{WorkerCount: 0, ShardCount: 1})
	assert.Error(t, err)

	_, err = NewJob("x", src, query, Config{WorkerCount: 1, ShardCount: 3})
	assert.Error(t, err, "shard count must be a power of two")

	_, err = NewJob("x", src, model.QuerySpec{Aggregates: query.Aggregates}, Config{WorkerCount: 1, ShardCount: 1})
	assert.Error(t, err, "group-by columns required")

	_, err = NewJob("x", src, model.QuerySpec{GroupBy: []string{"city"}}, Config{WorkerCount: 1, ShardCount: 1})
	assert.Error(t, err, "aggregates required")

	_, err = NewJob("x", src, model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "median", Column: "temp"}},
	}, Config{WorkerCount: 1, ShardCount: 1})
	assert.Error(t, err, "unknown aggregate")

	_, err = NewJob("x", src, model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "sum"}},
	}, Config{WorkerCount: 1, ShardCount: 1})
	assert.Error(t, err, "sum needs a measure column")
}

func TestJobMissingGroupColumn(t *testing.T) {
	records := []model.GenericRecord{
		{"city": "NYC", "temp": 20.0},
		{"temp": 21.0}, // no city
	}
	job, err := NewJob("x", NewRecordSource(records), model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}, Config{WorkerCount: 2, ShardCount: 2})
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsInputError(err))
	assert.Equal(t, model.PhaseFailed, job.Phase())
}

func TestJobNonNumericMeasure(t *testing.T) {
	records := []model.GenericRecord{
		{"city": "NYC", "temp": 20.0},
		{"city": "NYC", "temp": "warm"},
	}
	job, err := NewJob("x", NewRecordSource(records), model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "sum", Column: "temp"}},
	}, Config{WorkerCount: 1, ShardCount: 1})
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsAggregateError(err))
}

func TestJobSeparatorInGroupValues(t *testing.T) {
	// a field separator byte inside a column value must not merge two
	// distinct keys across the field boundary
	records := []model.GenericRecord{
		{"a": "x\x1fy", "b": "z", "v": 1.0},
		{"a": "x", "b": "y\x1fz", "v": 10.0},
	}
	got := runJob(t, records, model.QuerySpec{
		GroupBy:    []string{"a", "b"},
		Aggregates: []model.AggregateSpec{{Func: "sum", Column: "v"}},
	}, Config{WorkerCount: 2, ShardCount: 4})

	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got["x\x1fy|z"].Metrics["sum_v"])
	assert.Equal(t, 10.0, got["x|y\x1fz"].Metrics["sum_v"])
}

func TestJobNumberAndStringKeysStayDistinct(t *testing.T) {
	// {"code": 5} and {"code": "5"} are different groups even though both
	// labels render as "5"
	records := []model.GenericRecord{
		{"code": float64(5), "v": 1.0},
		{"code": "5", "v": 10.0},
	}
	job, err := NewJob("x", NewRecordSource(records), model.QuerySpec{
		GroupBy:    []string{"code"},
		Aggregates: []model.AggregateSpec{{Func: "sum", Column: "v"}},
	}, Config{WorkerCount: 2, ShardCount: 4})
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	rows, err := result.Collect()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	sums := make([]float64, 0, 2)
	for _, r := range rows {
		assert.EqualValues(t, 1, r.RecordCount)
		sums = append(sums, r.Metrics["sum_v"])
	}
	assert.ElementsMatch(t, []float64{1.0, 10.0}, sums)
}

func TestJobGroupCap(t *testing.T) {
	records := make([]model.GenericRecord, 50)
	for i := range records {
		records[i] = model.GenericRecord{"id": fmt.Sprintf("g%d", i), "v": 1.0}
	}
	job, err := NewJob("x", NewRecordSource(records), model.QuerySpec{
		GroupBy:    []string{"id"},
		Aggregates: []model.AggregateSpec{{Func: "sum", Column: "v"}},
	}, Config{WorkerCount: 2, ShardCount: 1, MaxGroups: 10})
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsResourceError(err))
	assert.Equal(t, model.PhaseFailed, job.Phase())
}

func TestJobCancelledBeforeStart(t *testing.T) {
	job, err := NewJob("x", NewRecordSource(cityTemps()), model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}, Config{WorkerCount: 2, ShardCount: 2, BatchSize: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = job.Run(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, model.PhaseCancelled, job.Phase())
}

func TestJobCancelledDuringScatter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var phases []model.Phase
	job, err := NewJob("x", NewRecordSource(cityTemps()), model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}, Config{WorkerCount: 2, ShardCount: 2, BatchSize: 1},
		WithPhaseHook(func(p model.Phase) {
			phases = append(phases, p)
			if p == model.PhaseScatter {
				cancel()
			}
		}))
	require.NoError(t, err)

	_, err = job.Run(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, model.PhaseCancelled, job.Phase())
	// never reached merge
	assert.NotContains(t, phases, model.PhaseMerge)
}

func TestJobCancelledDuringMerge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job, err := NewJob("x", NewRecordSource(cityTemps()), model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}, Config{WorkerCount: 2, ShardCount: 2},
		WithPhaseHook(func(p model.Phase) {
			if p == model.PhaseMerge {
				cancel()
			}
		}))
	require.NoError(t, err)

	_, err = job.Run(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, model.PhaseCancelled, job.Phase())
}

func TestJobFailureBeatsCancellation(t *testing.T) {
	// a real failure must not be reported as a cancellation even though the
	// failing task trips the phase context for its siblings
	records := []model.GenericRecord{
		{"city": "NYC", "temp": "bad"},
		{"city": "SFO", "temp": 1.0},
	}
	job, err := NewJob("x", NewRecordSource(records), model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "sum", Column: "temp"}},
	}, Config{WorkerCount: 2, ShardCount: 2, BatchSize: 1})
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCancelled)
	assert.True(t, IsAggregateError(err))
	assert.Equal(t, model.PhaseFailed, job.Phase())
}

func TestJobWithCustomKeyFunc(t *testing.T) {
	// bucket temps by ten-degree bands instead of a column value
	job, err := NewJob("x", NewRecordSource(cityTemps()), model.QuerySpec{
		GroupBy:    []string{"band"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}, Config{WorkerCount: 2, ShardCount: 2},
		WithKeyFunc(func(src RowSource, row int) (GroupKey, []interface{}, error) {
			v, err := src.Float64(row, "temp")
			if err != nil {
				return "", nil, err
			}
			band := int(v) / 10 * 10
			return MakeGroupKey(band), []interface{}{band}, nil
		}))
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	rows, err := result.Collect()
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, r := range rows {
		counts[r.GroupKey] = r.Metrics["count"]
	}
	assert.Equal(t, map[string]float64{"20": 3, "30": 1}, counts)
}

func TestJobSingleUsePhases(t *testing.T) {
	job, err := NewJob("x", NewRecordSource(cityTemps()), model.QuerySpec{
		GroupBy:    []string{"city"},
		Aggregates: []model.AggregateSpec{{Func: "count"}},
	}, Config{WorkerCount: 1, ShardCount: 1})
	require.NoError(t, err)

	var phases []model.Phase
	job.hook = func(p model.Phase) { phases = append(phases, p) }

	_, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Phase{
		model.PhaseScatter,
		model.PhaseBarrier,
		model.PhaseMerge,
		model.PhaseDone,
	}, phases)
}
