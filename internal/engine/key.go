package engine

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// GroupKey is the canonical encoding of one row's group-by column values.
// Equality and hash are stable for the whole job: two rows with the same
// column values encode to the same key on every worker, every run, and two
// rows with different values never share one.
type GroupKey string

// keySep separates tuple fields. Field payloads escape it below, so a
// separator byte inside a column value cannot shift a field boundary.
const keySep = "\x1f"

// keyEscaper keeps the encoding injective for arbitrary strings: the escape
// byte doubles itself and the separator is escaped inside payloads.
var keyEscaper = strings.NewReplacer("\x1e", "\x1e\x1e", "\x1f", "\x1e\x1f")

// MakeGroupKey encodes a tuple of column values into a GroupKey.
func MakeGroupKey(values ...interface{}) GroupKey {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = encodeKeyValue(v)
	}
	return GroupKey(strings.Join(parts, keySep))
}

// encodeKeyValue tags each field by kind before escaping it, so nil, the
// string "5" and the number 5 all encode to distinct keys.
func encodeKeyValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "n"
	case string:
		return "s" + keyEscaper.Replace(val)
	default:
		return "v" + keyEscaper.Replace(fmt.Sprintf("%v", val))
	}
}

// Shard maps the key to its shard index. shardCount must be a power of two;
// the mapping is pure, so every worker routes a given key identically.
func (k GroupKey) Shard(shardCount int) int {
	return int(xxhash.Sum64String(string(k)) & uint64(shardCount-1))
}

// ValidShardCount reports whether n is a usable shard count (power of two,
// at least one).
func ValidShardCount(n int) bool {
	return n > 0 && n&(n-1) == 0
}
