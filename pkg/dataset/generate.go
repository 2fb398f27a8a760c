package dataset

import (
	"math/rand"
	"sort"

	"rankidx/pkg/common"
)

// Generate returns size unique keys drawn uniformly from [minVal, maxVal],
// sorted ascending. The caller owns the random source; the index engines
// never read global randomness, so identical seeds give identical arrays.
// When the range cannot hold size unique keys the result shrinks to the
// range cardinality.
func Generate(rng *rand.Rand, size int, minVal, maxVal common.KeyType) []common.KeyType {
	if size <= 0 || maxVal < minVal {
		return nil
	}
	span := int64(maxVal-minVal) + 1
	if span <= 0 { // range wider than int63
		span = 1 << 62
	}
	if int64(size) > span {
		size = int(span)
	}

	seen := make(map[common.KeyType]struct{}, size)
	keys := make([]common.KeyType, 0, size)
	for len(keys) < size {
		k := minVal + common.KeyType(rng.Int63n(span))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
