package engine

import (
	"errors"
	"fmt"

	"go-agg-engine/internal/model"
)

// KeyFunc extracts the group key and its display values for one row. The
// default derives both from the query's group-by columns; callers that carry
// pre-computed keys can install their own via WithKeyFunc.
type KeyFunc func(src RowSource, row int) (GroupKey, []interface{}, error)

// boundAggregate is one query aggregate resolved at plan time: the registry
// implementation plus the measure column and the output metric name.
type boundAggregate struct {
	agg     Aggregator
	column  string
	outName string
}

// plan is the compiled form of a QuerySpec. Building it front-loads every
// registry lookup so the scatter loop never branches on function names.
type plan struct {
	keyColumns []string
	keyFn      KeyFunc
	aggs       []boundAggregate
}

func compilePlan(q model.QuerySpec) (*plan, error) {
	if len(q.GroupBy) == 0 {
		return nil, errors.New("query needs at least one group-by column")
	}
	if len(q.Aggregates) == 0 {
		return nil, errors.New("query needs at least one aggregate")
	}

	aggs := make([]boundAggregate, len(q.Aggregates))
	for i, spec := range q.Aggregates {
		agg, err := Lookup(spec.Func)
		if err != nil {
			return nil, err
		}
		if spec.Column == "" && agg.Name() != "count" {
			return nil, fmt.Errorf("aggregate %q needs a measure column", spec.Func)
		}
		aggs[i] = boundAggregate{
			agg:     agg,
			column:  spec.Column,
			outName: metricName(agg.Name(), spec.Column),
		}
	}

	p := &plan{keyColumns: q.GroupBy, aggs: aggs}
	p.keyFn = p.columnKey
	return p, nil
}

// columnKey is the default KeyFunc: read every group-by column and encode
// the tuple.
func (p *plan) columnKey(src RowSource, row int) (GroupKey, []interface{}, error) {
	values := make([]interface{}, len(p.keyColumns))
	for i, col := range p.keyColumns {
		v, err := src.Value(row, col)
		if err != nil {
			return "", nil, &InputError{Row: row, Column: col, Err: err}
		}
		values[i] = v
	}
	return MakeGroupKey(values...), values, nil
}

// metricName follows the metric_<column> naming convention, e.g. max_temp.
func metricName(fn, column string) string {
	if column == "" {
		return fn
	}
	return fn + "_" + column
}
