package engine

import (
	"context"
	"fmt"

	"go-agg-engine/pkg/utils"
)

// defaultBatchSize is how many rows a scatter task processes between
// cancellation polls.
const defaultBatchSize = 256

// scatterTask consumes one partition and updates its private shard tables.
// No other task ever touches them before the barrier, so the hot loop takes
// no locks and no atomics.
type scatterTask struct {
	id        int
	part      Partition
	src       RowSource
	plan      *plan
	tables    []*ShardTable // one per shard index, owned by this worker
	batchSize int
	maxGroups int
}

func newScatterTask(id int, part Partition, src RowSource, p *plan, shardCount, batchSize, maxGroups int) *scatterTask {
	tables := make([]*ShardTable, shardCount)
	for s := range tables {
		tables[s] = newShardTable(id, s)
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &scatterTask{
		id:        id,
		part:      part,
		src:       src,
		plan:      p,
		tables:    tables,
		batchSize: batchSize,
		maxGroups: maxGroups,
	}
}

// run drains the partition. On success every table is sealed; on error or
// cancellation the tables stay unsealed and their partial contents are never
// read by anyone.
func (w *scatterTask) run(ctx context.Context) error {
	shardCount := len(w.tables)
	for row := w.part.Start; row < w.part.End; row++ {
		if (row-w.part.Start)%w.batchSize == 0 {
			select {
			case <-ctx.Done():
				return ErrCancelled
			default:
			}
		}

		key, values, err := w.plan.keyFn(w.src, row)
		if err != nil {
			return err
		}

		tbl := w.tables[key.Shard(shardCount)]
		e, err := tbl.upsert(key, values, w.plan.aggs, w.maxGroups)
		if err != nil {
			return err
		}

		for i, b := range w.plan.aggs {
			var v float64
			if b.column != "" {
				// an absent column is an input defect, a present value the
				// function cannot read is a measure type mismatch
				raw, err := w.src.Value(row, b.column)
				if err != nil {
					return &InputError{Row: row, Column: b.column, Err: err}
				}
				f, ok := utils.Float64(raw)
				if !ok {
					return &AggregateFunctionError{
						Func:   b.agg.Name(),
						Column: b.column,
						Err:    fmt.Errorf("row %d value %v (%T) is not numeric", row, raw, raw),
					}
				}
				v = f
			}
			next, err := b.agg.Accumulate(e.states[i], v, row)
			if err != nil {
				return &AggregateFunctionError{Func: b.agg.Name(), Column: b.column, Err: err}
			}
			e.states[i] = next
		}
		e.rows++
	}

	for _, t := range w.tables {
		t.seal()
	}
	return nil
}
