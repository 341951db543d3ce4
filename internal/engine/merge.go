package engine

import (
	"context"
	"fmt"
)

// mergeShard folds the shardIdx-th table from every worker into one output
// table. Distinct shard indices touch disjoint data, so concurrent calls for
// different indices never share anything. Workers are folded in ascending
// worker id, which pins down which worker's group values the output keeps;
// the accumulator fold itself is order-independent by the Merge contract.
func mergeShard(ctx context.Context, shardIdx int, workers []*scatterTask, p *plan, maxGroups int) (*ShardTable, error) {
	out := newShardTable(-1, shardIdx)

	for _, w := range workers {
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}

		t := w.tables[shardIdx]
		if !t.sealed {
			// reading before the barrier would observe half-written states
			return nil, fmt.Errorf("shard %d: worker %d table not sealed before merge", shardIdx, w.id)
		}

		for key, in := range t.entries {
			e, ok := out.entries[key]
			if !ok {
				if maxGroups > 0 && len(out.entries) >= maxGroups {
					return nil, &ResourceError{Shard: shardIdx, Groups: len(out.entries), Limit: maxGroups}
				}
				out.entries[key] = &entry{
					key:    key,
					values: in.values,
					states: append([]State(nil), in.states...),
					rows:   in.rows,
				}
				continue
			}
			for i, b := range p.aggs {
				merged, err := b.agg.Merge(e.states[i], in.states[i])
				if err != nil {
					return nil, &AggregateFunctionError{Func: b.agg.Name(), Column: b.column, Err: err}
				}
				e.states[i] = merged
			}
			e.rows += in.rows
		}
	}

	out.seal()
	return out, nil
}
