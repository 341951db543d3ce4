package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// State is one aggregate function's accumulator for one group. The same
// struct backs every builtin: sum and avg use Sum and Count, min, max, first
// and last use Value plus the global row position of the captured value.
// States are passed by value through Accumulate and Merge, never mutated in
// place, which keeps merge order-independence auditable.
type State struct {
	Sum   float64
	Count int64
	Value float64
	Pos   int // global row index of the captured value
	Seen  bool
}

// Aggregator defines one aggregate function's semantics. Merge must be
// associative and commutative: the merge coordinator folds per-worker states
// in whatever order its tasks happen to run.
type Aggregator interface {
	Name() string
	Init() State
	Accumulate(s State, v float64, pos int) (State, error)
	Merge(a, b State) (State, error)
	Finalize(s State) (float64, error)
}

var (
	errNonFinite = errors.New("non-finite measure value")
	errOverflow  = errors.New("float64 overflow")
	errNoRows    = errors.New("finalize of empty state")
)

// checkMeasure rejects NaN and infinite inputs before they poison a state.
func checkMeasure(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errNonFinite
	}
	return nil
}

// ---- sum ----

type sumAgg struct{}

func (sumAgg) Name() string { return "sum" }
func (sumAgg) Init() State  { return State{} }

func (sumAgg) Accumulate(s State, v float64, pos int) (State, error) {
	if err := checkMeasure(v); err != nil {
		return s, err
	}
	s.Sum += v
	if math.IsInf(s.Sum, 0) {
		return s, errOverflow
	}
	s.Count++
	s.Seen = true
	return s, nil
}

func (sumAgg) Merge(a, b State) (State, error) {
	a.Sum += b.Sum
	if math.IsInf(a.Sum, 0) {
		return a, errOverflow
	}
	a.Count += b.Count
	a.Seen = a.Seen || b.Seen
	return a, nil
}

func (sumAgg) Finalize(s State) (float64, error) {
	if !s.Seen {
		return 0, errNoRows
	}
	return s.Sum, nil
}

// ---- count ----

// countAgg counts rows per group; any measure column is ignored.
type countAgg struct{}

func (countAgg) Name() string { return "count" }
func (countAgg) Init() State  { return State{} }

func (countAgg) Accumulate(s State, v float64, pos int) (State, error) {
	s.Count++
	s.Seen = true
	return s, nil
}

func (countAgg) Merge(a, b State) (State, error) {
	a.Count += b.Count
	a.Seen = a.Seen || b.Seen
	return a, nil
}

func (countAgg) Finalize(s State) (float64, error) {
	return float64(s.Count), nil
}

// ---- min / max ----

// Tie-break: on equal values the state captured at the smaller row position
// wins, which matches what a sequential scan would have retained.
type minAgg struct{}

func (minAgg) Name() string { return "min" }
func (minAgg) Init() State  { return State{} }

func (minAgg) Accumulate(s State, v float64, pos int) (State, error) {
	if err := checkMeasure(v); err != nil {
		return s, err
	}
	if !s.Seen || v < s.Value || (v == s.Value && pos < s.Pos) {
		s.Value, s.Pos = v, pos
	}
	s.Seen = true
	return s, nil
}

func (minAgg) Merge(a, b State) (State, error) {
	if !a.Seen {
		return b, nil
	}
	if !b.Seen {
		return a, nil
	}
	if b.Value < a.Value || (b.Value == a.Value && b.Pos < a.Pos) {
		return b, nil
	}
	return a, nil
}

func (minAgg) Finalize(s State) (float64, error) {
	if !s.Seen {
		return 0, errNoRows
	}
	return s.Value, nil
}

type maxAgg struct{}

func (maxAgg) Name() string { return "max" }
func (maxAgg) Init() State  { return State{} }

func (maxAgg) Accumulate(s State, v float64, pos int) (State, error) {
	if err := checkMeasure(v); err != nil {
		return s, err
	}
	if !s.Seen || v > s.Value || (v == s.Value && pos < s.Pos) {
		s.Value, s.Pos = v, pos
	}
	s.Seen = true
	return s, nil
}

func (maxAgg) Merge(a, b State) (State, error) {
	if !a.Seen {
		return b, nil
	}
	if !b.Seen {
		return a, nil
	}
	if b.Value > a.Value || (b.Value == a.Value && b.Pos < a.Pos) {
		return b, nil
	}
	return a, nil
}

func (maxAgg) Finalize(s State) (float64, error) {
	if !s.Seen {
		return 0, errNoRows
	}
	return s.Value, nil
}

// ---- avg ----

// avgAgg keeps a sum+count pair and divides at finalize time.
type avgAgg struct{}

func (avgAgg) Name() string { return "avg" }
func (avgAgg) Init() State  { return State{} }

func (avgAgg) Accumulate(s State, v float64, pos int) (State, error) {
	if err := checkMeasure(v); err != nil {
		return s, err
	}
	s.Sum += v
	if math.IsInf(s.Sum, 0) {
		return s, errOverflow
	}
	s.Count++
	s.Seen = true
	return s, nil
}

func (avgAgg) Merge(a, b State) (State, error) {
	a.Sum += b.Sum
	if math.IsInf(a.Sum, 0) {
		return a, errOverflow
	}
	a.Count += b.Count
	a.Seen = a.Seen || b.Seen
	return a, nil
}

func (avgAgg) Finalize(s State) (float64, error) {
	if s.Count == 0 {
		return 0, errNoRows
	}
	return s.Sum / float64(s.Count), nil
}

// ---- first / last ----

// The captured state carries its global row position, so merging partial
// states from any pairing of workers still resolves to the value the
// sequential scan would have kept.
type firstAgg struct{}

func (firstAgg) Name() string { return "first" }
func (firstAgg) Init() State  { return State{} }

func (firstAgg) Accumulate(s State, v float64, pos int) (State, error) {
	if err := checkMeasure(v); err != nil {
		return s, err
	}
	if !s.Seen || pos < s.Pos {
		s.Value, s.Pos = v, pos
	}
	s.Seen = true
	return s, nil
}

func (firstAgg) Merge(a, b State) (State, error) {
	if !a.Seen {
		return b, nil
	}
	if !b.Seen {
		return a, nil
	}
	if b.Pos < a.Pos {
		return b, nil
	}
	return a, nil
}

func (firstAgg) Finalize(s State) (float64, error) {
	if !s.Seen {
		return 0, errNoRows
	}
	return s.Value, nil
}

type lastAgg struct{}

func (lastAgg) Name() string { return "last" }
func (lastAgg) Init() State  { return State{} }

func (lastAgg) Accumulate(s State, v float64, pos int) (State, error) {
	if err := checkMeasure(v); err != nil {
		return s, err
	}
	if !s.Seen || pos > s.Pos {
		s.Value, s.Pos = v, pos
	}
	s.Seen = true
	return s, nil
}

func (lastAgg) Merge(a, b State) (State, error) {
	if !a.Seen {
		return b, nil
	}
	if !b.Seen {
		return a, nil
	}
	if b.Pos > a.Pos {
		return b, nil
	}
	return a, nil
}

func (lastAgg) Finalize(s State) (float64, error) {
	if !s.Seen {
		return 0, errNoRows
	}
	return s.Value, nil
}

// ---- registry ----

var builtins = map[string]Aggregator{
	"sum":     sumAgg{},
	"count":   countAgg{},
	"min":     minAgg{},
	"max":     maxAgg{},
	"avg":     avgAgg{},
	"average": avgAgg{},
	"first":   firstAgg{},
	"last":    lastAgg{},
}

// Lookup resolves an aggregate function by name. Resolution happens once per
// query column at plan time, never per row.
func Lookup(name string) (Aggregator, error) {
	agg, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown aggregate function %q (have %s)", name, strings.Join(Builtins(), ", "))
	}
	return agg, nil
}

// Builtins lists the registered function names, sorted.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
