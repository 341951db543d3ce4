package engine

import (
	"errors"
	"fmt"
)

// Partition is a contiguous, non-overlapping range of input rows assigned to
// one worker. Start is inclusive, End exclusive.
type Partition struct {
	Start int
	End   int
}

// Len returns the number of rows in the partition.
func (p Partition) Len() int { return p.End - p.Start }

// Partition strategies.
const (
	PartitionByRowCount = "by-row-count"
	PartitionByByteSize = "by-byte-size"
)

// PartitionRows splits [0, src.NumRows()) into workers disjoint contiguous
// partitions whose union is exactly the input. by-row-count balances row
// counts; by-byte-size balances estimated per-row cost and needs a ByteSized
// source. Partitions may be empty when rows < workers.
func PartitionRows(src RowSource, workers int, strategy string) ([]Partition, error) {
	if src == nil {
		return nil, errors.New("nil row source")
	}
	if workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workers)
	}
	total := src.NumRows()
	if total < 0 {
		return nil, fmt.Errorf("row source reports negative extent %d", total)
	}

	switch strategy {
	case "", PartitionByRowCount:
		return partitionByRowCount(total, workers), nil
	case PartitionByByteSize:
		sized, ok := src.(ByteSized)
		if !ok {
			return nil, fmt.Errorf("%s partitioning needs a source that reports row sizes", PartitionByByteSize)
		}
		return partitionByByteSize(sized, total, workers), nil
	default:
		return nil, fmt.Errorf("unknown partition strategy %q", strategy)
	}
}

func partitionByRowCount(total, workers int) []Partition {
	parts := make([]Partition, workers)
	base := total / workers
	rem := total % workers
	start := 0
	for w := 0; w < workers; w++ {
		size := base
		if w < rem {
			size++
		}
		parts[w] = Partition{Start: start, End: start + size}
		start += size
	}
	return parts
}

// partitionByByteSize cuts the row range so every partition carries roughly
// the same byte load, favoring equal expected cost over equal row count.
func partitionByByteSize(src ByteSized, total, workers int) []Partition {
	prefix := make([]int64, total+1)
	for i := 0; i < total; i++ {
		prefix[i+1] = prefix[i] + int64(src.RowBytes(i))
	}
	sum := prefix[total]

	parts := make([]Partition, workers)
	start := 0
	for w := 0; w < workers; w++ {
		end := start
		if w == workers-1 {
			end = total
		} else {
			target := sum * int64(w+1) / int64(workers)
			for end < total && prefix[end+1] <= target {
				end++
			}
		}
		parts[w] = Partition{Start: start, End: end}
		start = end
	}
	return parts
}
