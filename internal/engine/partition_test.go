package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-agg-engine/internal/model"
)

// checkCover asserts the partitions are contiguous, disjoint and cover
// exactly [0, total).
func checkCover(t *testing.T, parts []Partition, total int) {
	t.Helper()
	next := 0
	for _, p := range parts {
		assert.Equal(t, next, p.Start)
		assert.GreaterOrEqual(t, p.End, p.Start)
		next = p.End
	}
	assert.Equal(t, total, next)
}

func TestPartitionByRowCount(t *testing.T) {
	tests := []struct {
		rows    int
		workers int
	}{
		{10, 1},
		{10, 3},
		{10, 10},
		{3, 8}, // more workers than rows: some partitions are empty
		{0, 4},
		{1000, 7},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("rows=%d_workers=%d", tc.rows, tc.workers), func(t *testing.T) {
			src := NewRecordSource(makeRecords(tc.rows))
			parts, err := PartitionRows(src, tc.workers, PartitionByRowCount)
			require.NoError(t, err)
			require.Len(t, parts, tc.workers)
			checkCover(t, parts, tc.rows)

			// row counts never differ by more than one
			for _, p := range parts {
				assert.InDelta(t, tc.rows/tc.workers, p.Len(), 1)
			}
		})
	}
}

func TestPartitionDefaultStrategy(t *testing.T) {
	src := NewRecordSource(makeRecords(9))
	parts, err := PartitionRows(src, 2, "")
	require.NoError(t, err)
	checkCover(t, parts, 9)
}

func TestPartitionByByteSize(t *testing.T) {
	// one giant row among small ones skews the byte split away from the
	// even row split
	records := makeRecords(10)
	records[0]["payload"] = strings.Repeat("x", 10000)
	src := NewRecordSource(records)

	parts, err := PartitionRows(src, 2, PartitionByByteSize)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	checkCover(t, parts, 10)

	// the worker holding the giant row gets few other rows
	assert.Less(t, parts[0].Len(), parts[1].Len())
}

func TestPartitionByByteSizeUniform(t *testing.T) {
	src := NewRecordSource(makeRecords(100))
	parts, err := PartitionRows(src, 4, PartitionByByteSize)
	require.NoError(t, err)
	checkCover(t, parts, 100)
	for _, p := range parts {
		assert.InDelta(t, 25, p.Len(), 1)
	}
}

func TestPartitionErrors(t *testing.T) {
	src := NewRecordSource(makeRecords(5))

	_, err := PartitionRows(nil, 2, PartitionByRowCount)
	assert.Error(t, err)

	_, err = PartitionRows(src, 0, PartitionByRowCount)
	assert.Error(t, err)

	_, err = PartitionRows(src, -3, PartitionByRowCount)
	assert.Error(t, err)

	_, err = PartitionRows(src, 2, "round-robin")
	assert.Error(t, err)

	// by-byte-size needs a source that reports row sizes
	_, err = PartitionRows(flatSource{rows: 5}, 2, PartitionByByteSize)
	assert.Error(t, err)
}

// flatSource is a RowSource without ByteSized.
type flatSource struct{ rows int }

func (s flatSource) NumRows() int { return s.rows }
func (s flatSource) Value(row int, column string) (interface{}, error) {
	return row, nil
}
func (s flatSource) Float64(row int, column string) (float64, error) {
	return float64(row), nil
}

func makeRecords(n int) []model.GenericRecord {
	records := make([]model.GenericRecord, n)
	for i := range records {
		records[i] = model.GenericRecord{"id": i, "v": float64(i)}
	}
	return records
}
