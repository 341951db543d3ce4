package engine

// entry is one group's slot in a ShardTable: the decoded group-by values for
// output plus one accumulator state per planned aggregate.
type entry struct {
	key    GroupKey
	values []interface{} // group-by column values, captured on first insert
	states []State
	rows   int64
}

// ShardTable maps group keys to accumulator states. During scatter exactly
// one worker writes it; after seal it is read-only and consumed by exactly
// one merge task. Growth is the runtime map's amortized rehash and never
// happens after seal, so merge iteration is safe by construction.
type ShardTable struct {
	worker  int
	shard   int
	entries map[GroupKey]*entry
	sealed  bool
}

func newShardTable(worker, shard int) *ShardTable {
	return &ShardTable{
		worker:  worker,
		shard:   shard,
		entries: make(map[GroupKey]*entry, 16),
	}
}

// upsert returns the entry for key, inserting an initialized one on miss.
// values are only retained for a fresh insert. maxGroups caps table growth;
// zero means unlimited.
func (t *ShardTable) upsert(key GroupKey, values []interface{}, aggs []boundAggregate, maxGroups int) (*entry, error) {
	if e, ok := t.entries[key]; ok {
		return e, nil
	}
	if maxGroups > 0 && len(t.entries) >= maxGroups {
		return nil, &ResourceError{Shard: t.shard, Groups: len(t.entries), Limit: maxGroups}
	}
	states := make([]State, len(aggs))
	for i, b := range aggs {
		states[i] = b.agg.Init()
	}
	e := &entry{key: key, values: values, states: states}
	t.entries[key] = e
	return e, nil
}

// seal marks the table read-only. The worker calls it when its partition is
// drained; the barrier guarantees every table is sealed before merge starts.
func (t *ShardTable) seal() { t.sealed = true }

// Len returns the number of distinct groups in the table.
func (t *ShardTable) Len() int { return len(t.entries) }
