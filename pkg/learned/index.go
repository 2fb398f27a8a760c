package learned

import (
	"math"
	"sort"

	"rankidx/pkg/common"
	"rankidx/pkg/model"
	"rankidx/pkg/monitor"
)

// Leaf pairs a stage-1 model with the exact worst-case deviation observed
// between its rounded predictions and the true ranks of the keys routed to
// it during training. MaxErr is what makes the bounded search exact.
type Leaf struct {
	Model  model.LinearModel
	MaxErr int
}

// Index is a two-level recursive model index over a sorted integer array.
// A stage-0 line routes a key to one of the leaves; the leaf line predicts
// the key's rank, and the recorded error bound limits the local search.
//
// The key slice is referenced, not copied; the caller must not mutate it
// after Build. All methods are single-threaded: mutating calls (Insert,
// Rebuild) must be serialized against readers by the caller.
type Index struct {
	keys     []common.KeyType
	stage0   model.LinearModel
	leaves   []Leaf
	overflow []common.KeyType
	stats    *monitor.SearchStats

	adaptive     bool
	numLeaves    int
	maxLeafError int
}

// Build trains an index with numLeafModels leaves over an equal-size
// partition of the array. Fails with model.ErrEmptyInput on an empty array.
func Build(keys []common.KeyType, numLeafModels int) (*Index, error) {
	if numLeafModels < 1 {
		numLeafModels = 1
	}
	idx := &Index{
		numLeaves: numLeafModels,
		stats:     monitor.NewSearchStats(),
	}
	if err := idx.train(keys, model.PartitionEqual(len(keys), numLeafModels)); err != nil {
		return nil, err
	}
	return idx, nil
}

// BuildAdaptive trains an index over the greedy error-bounded partition:
// the leaf count follows from the data instead of being fixed up front,
// trading model count for a targeted per-leaf error.
func BuildAdaptive(keys []common.KeyType, maxLeafError int) (*Index, error) {
	idx := &Index{
		adaptive:     true,
		maxLeafError: maxLeafError,
		stats:        monitor.NewSearchStats(),
	}
	if err := idx.train(keys, model.PartitionAdaptive(keys, maxLeafError)); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) train(keys []common.KeyType, segments []model.Segment) error {
	if len(keys) == 0 {
		return model.ErrEmptyInput
	}

	// Stage 0 learns key -> segment index from the chosen partition.
	targets := make([]float64, len(keys))
	for j, seg := range segments {
		for i := seg.Start; i < seg.End; i++ {
			targets[i] = float64(j)
		}
	}
	stage0, err := model.Fit(keys, targets)
	if err != nil {
		return err
	}

	// Leaves train on the keys the fitted stage 0 actually routes to them,
	// not on the raw partition ranges. Routing is deterministic, so every
	// key that can reach a leaf at query time was in its training set and
	// MaxErr bounds its prediction error.
	numLeaves := len(segments)
	groupKeys := make([][]common.KeyType, numLeaves)
	groupRanks := make([][]float64, numLeaves)
	for i, key := range keys {
		j := clamp(int(math.Round(stage0.Predict(float64(key)))), 0, numLeaves-1)
		groupKeys[j] = append(groupKeys[j], key)
		groupRanks[j] = append(groupRanks[j], float64(i))
	}

	leaves := make([]Leaf, numLeaves)
	for j := range leaves {
		if len(groupKeys[j]) == 0 {
			// Nothing routes here for keys present in the array; an absent
			// key landing on an empty leaf is handled by the fallback.
			continue
		}
		lm, err := model.Fit(groupKeys[j], groupRanks[j])
		if err != nil {
			return err
		}
		maxErr := 0
		for k, key := range groupKeys[j] {
			predicted := int(math.Round(lm.Predict(float64(key))))
			if d := predicted - int(groupRanks[j][k]); d > maxErr {
				maxErr = d
			} else if -d > maxErr {
				maxErr = -d
			}
		}
		leaves[j] = Leaf{Model: lm, MaxErr: maxErr}
	}

	idx.keys = keys
	idx.stage0 = stage0
	idx.leaves = leaves
	return nil
}

// Predict returns the approximate rank of key and the error bound of the
// leaf that produced it. The rank is clipped to valid array indices.
func (idx *Index) Predict(key common.KeyType) (position, bound int) {
	j := clamp(int(math.Round(idx.stage0.Predict(float64(key)))), 0, len(idx.leaves)-1)
	leaf := idx.leaves[j]
	position = clamp(int(math.Round(leaf.Model.Predict(float64(key)))), 0, len(idx.keys)-1)
	return position, leaf.MaxErr
}

// Search returns the rank of key in the array, or false when absent.
//
// The bounded window [position-bound, position+bound] is searched first;
// its miss proves absence only while MaxErr actually bounds every trained
// point, so a full binary search backs it up before NotFound is declared
// (counted as a fallback for diagnostics). Keys sitting in the overflow
// buffer since the last Rebuild are found by a final linear scan and
// report their position in the logical concatenation.
func (idx *Index) Search(key common.KeyType) (int, bool) {
	idx.stats.RecordSearch()

	if len(idx.keys) > 0 {
		position, bound := idx.Predict(key)
		lo := position - bound
		if lo < 0 {
			lo = 0
		}
		hi := position + bound
		if hi > len(idx.keys)-1 {
			hi = len(idx.keys) - 1
		}
		if i, ok := searchRange(idx.keys, lo, hi+1, key); ok {
			idx.stats.RecordWindowHit()
			return i, true
		}

		idx.stats.RecordFallback()
		if i, ok := searchRange(idx.keys, 0, len(idx.keys), key); ok {
			return i, true
		}
	}

	for i, k := range idx.overflow {
		if k == key {
			idx.stats.RecordOverflowHit()
			return len(idx.keys) + i, true
		}
	}
	return -1, false
}

// Insert appends key to the unsorted overflow buffer in O(1). The trained
// structure is batch-only and stays untouched until Rebuild; searches
// degrade linearly in the buffer length until then.
func (idx *Index) Insert(key common.KeyType) {
	idx.overflow = append(idx.overflow, key)
}

// Rebuild merges the overflow buffer into the main array, retrains with
// the build-time partition settings, and resets the buffer.
func (idx *Index) Rebuild() error {
	if len(idx.overflow) == 0 {
		return nil
	}

	merged := make([]common.KeyType, 0, len(idx.keys)+len(idx.overflow))
	merged = append(merged, idx.keys...)
	merged = append(merged, idx.overflow...)
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })

	var segments []model.Segment
	if idx.adaptive {
		segments = model.PartitionAdaptive(merged, idx.maxLeafError)
	} else {
		segments = model.PartitionEqual(len(merged), idx.numLeaves)
	}
	if err := idx.train(merged, segments); err != nil {
		return err
	}
	idx.overflow = idx.overflow[:0]
	return nil
}

// Len counts all indexed keys, overflow included.
func (idx *Index) Len() int { return len(idx.keys) + len(idx.overflow) }

// OverflowLen reports the unindexed buffer length; harnesses include it in
// complexity reports since it degrades Search linearly until Rebuild.
func (idx *Index) OverflowLen() int { return len(idx.overflow) }

// NumLeaves is the trained leaf count (equals the requested count for the
// equal partition, data-dependent for the adaptive one).
func (idx *Index) NumLeaves() int { return len(idx.leaves) }

// ParameterCount is the number of stored model floats: slope and intercept
// for stage 0 and every leaf.
func (idx *Index) ParameterCount() int { return 2 * (1 + len(idx.leaves)) }

// Stage0 exposes the routing model for diagnostics.
func (idx *Index) Stage0() model.LinearModel { return idx.stage0 }

// Leaves returns a copy of the leaf models and their error bounds.
func (idx *Index) Leaves() []Leaf {
	out := make([]Leaf, len(idx.leaves))
	copy(out, idx.leaves)
	return out
}

// FallbackCount reports how often the bounded window missed.
func (idx *Index) FallbackCount() uint64 { return idx.stats.FallbackCount() }

// Stats exposes the full search counters.
func (idx *Index) Stats() *monitor.SearchStats { return idx.stats }

func searchRange(keys []common.KeyType, lo, hi int, key common.KeyType) (int, bool) {
	i := lo + sort.Search(hi-lo, func(k int) bool { return keys[lo+k] >= key })
	if i < hi && keys[i] == key {
		return i, true
	}
	return 0, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
