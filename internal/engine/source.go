package engine

import (
	"fmt"

	"go-agg-engine/internal/model"
	"go-agg-engine/pkg/utils"
)

// RowSource is the engine's view of the input row set: a known extent plus
// random access to typed column values. Sources are read-only during a run;
// the storage layer that fills them is out of engine scope.
type RowSource interface {
	NumRows() int
	Value(row int, column string) (interface{}, error)
	Float64(row int, column string) (float64, error)
}

// ByteSized is implemented by sources that can report per-row payload sizes,
// which the by-byte-size partition strategy needs.
type ByteSized interface {
	RowBytes(row int) int
}

// RecordSource adapts an in-memory record slice to RowSource. It is the
// adapter every loader in internal/source funnels into.
type RecordSource struct {
	records []model.GenericRecord
}

// NewRecordSource wraps records without copying them. Callers must not
// mutate the slice while a job is running.
func NewRecordSource(records []model.GenericRecord) *RecordSource {
	return &RecordSource{records: records}
}

func (s *RecordSource) NumRows() int { return len(s.records) }

func (s *RecordSource) Value(row int, column string) (interface{}, error) {
	if row < 0 || row >= len(s.records) {
		return nil, fmt.Errorf("row %d out of range [0, %d)", row, len(s.records))
	}
	v, ok := s.records[row][column]
	if !ok {
		return nil, fmt.Errorf("column %q not present", column)
	}
	return v, nil
}

func (s *RecordSource) Float64(row int, column string) (float64, error) {
	v, err := s.Value(row, column)
	if err != nil {
		return 0, err
	}
	f, ok := utils.Float64(v)
	if !ok {
		return 0, fmt.Errorf("column %q value %v (%T) is not numeric", column, v, v)
	}
	return f, nil
}

// RowBytes gives a rough serialized size per row: string lengths plus a flat
// word per scalar. Good enough for cost-balanced partitioning.
func (s *RecordSource) RowBytes(row int) int {
	if row < 0 || row >= len(s.records) {
		return 0
	}
	size := 0
	for k, v := range s.records[row] {
		size += len(k)
		if str, ok := v.(string); ok {
			size += len(str)
		} else {
			size += 8
		}
	}
	return size
}
