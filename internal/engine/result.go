package engine

import (
	"fmt"
	"sort"
	"strings"

	"go-agg-engine/internal/model"
)

// Result is the assembled output: a lazy, single-pass cursor over the merged
// shards in ascending shard index, sorted by key inside each shard so the
// enumeration is fully deterministic. It is not restartable; callers wanting
// a different order re-sort on their side.
type Result struct {
	plan   *plan
	shards []*ShardTable
	shard  int
	keys   []GroupKey
	idx    int
}

func newResult(p *plan, shards []*ShardTable) *Result {
	return &Result{plan: p, shards: shards, shard: -1, idx: -1}
}

// Groups returns the total number of distinct groups across all shards.
func (r *Result) Groups() int {
	total := 0
	for _, t := range r.shards {
		total += t.Len()
	}
	return total
}

// Next advances the cursor to the next group, loading the next non-empty
// shard as needed. It returns false once the sequence is exhausted.
func (r *Result) Next() bool {
	for {
		if r.idx+1 < len(r.keys) {
			r.idx++
			return true
		}
		r.shard++
		if r.shard >= len(r.shards) {
			r.keys = nil
			return false
		}
		r.loadShard()
	}
}

func (r *Result) loadShard() {
	t := r.shards[r.shard]
	r.keys = make([]GroupKey, 0, t.Len())
	for key := range t.entries {
		r.keys = append(r.keys, key)
	}
	sort.Slice(r.keys, func(i, j int) bool { return r.keys[i] < r.keys[j] })
	r.idx = -1
}

// Row finalizes and returns the group under the cursor.
func (r *Result) Row() (model.GroupResult, error) {
	e := r.shards[r.shard].entries[r.keys[r.idx]]

	metrics := make(map[string]float64, len(r.plan.aggs))
	for i, b := range r.plan.aggs {
		v, err := b.agg.Finalize(e.states[i])
		if err != nil {
			return model.GroupResult{}, &AggregateFunctionError{Func: b.agg.Name(), Column: b.column, Err: err}
		}
		metrics[b.outName] = v
	}

	groupValues := make(map[string]interface{}, len(r.plan.keyColumns))
	for i, col := range r.plan.keyColumns {
		if i < len(e.values) {
			groupValues[col] = e.values[i]
		}
	}

	return model.GroupResult{
		GroupKey:    displayGroupKey(e.values),
		GroupValues: groupValues,
		Metrics:     metrics,
		RecordCount: e.rows,
	}, nil
}

// displayGroupKey renders the group's column values as an output label. It
// is a label, not an identity: grouping identity is the injectively encoded
// GroupKey, so distinct groups stay distinct rows even when their labels
// happen to render alike.
func displayGroupKey(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "|")
}

// Collect drains the cursor into a slice. Like any other consumption of the
// cursor it can only happen once.
func (r *Result) Collect() ([]model.GroupResult, error) {
	out := make([]model.GroupResult, 0, r.Groups())
	for r.Next() {
		row, err := r.Row()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
