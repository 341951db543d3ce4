package engine

import (
	"errors"
	"fmt"
)

// ErrCancelled reports that the job's cancellation token tripped. It is a
// status, not a failure: no partial result is observable either way.
var ErrCancelled = errors.New("aggregation job cancelled")

// InputError flags a malformed row or an inaccessible column. It aborts the
// whole job.
type InputError struct {
	Row    int
	Column string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error at row %d, column %q: %v", e.Row, e.Column, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// AggregateFunctionError flags a value the aggregate function cannot accept
// during accumulate, merge or finalize (overflow, non-finite measure).
type AggregateFunctionError struct {
	Func   string
	Column string
	Err    error
}

func (e *AggregateFunctionError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("aggregate %s: %v", e.Func, e.Err)
	}
	return fmt.Sprintf("aggregate %s(%s): %v", e.Func, e.Column, e.Err)
}

func (e *AggregateFunctionError) Unwrap() error { return e.Err }

// ResourceError reports that a shard or merge table hit the configured group
// cap. It is reported distinctly from logic errors so callers can tell an
// exhausted run from a broken one.
type ResourceError struct {
	Shard  int
	Groups int
	Limit  int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("shard %d: group cap exhausted (%d groups, limit %d)", e.Shard, e.Groups, e.Limit)
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsAggregateError reports whether err is (or wraps) an AggregateFunctionError.
func IsAggregateError(err error) bool {
	var ae *AggregateFunctionError
	return errors.As(err, &ae)
}

// IsResourceError reports whether err is (or wraps) a ResourceError.
func IsResourceError(err error) bool {
	var re *ResourceError
	return errors.As(err, &re)
}
