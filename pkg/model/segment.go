package model

import (
	"math"

	"rankidx/pkg/common"
)

// Segment is a half-open [Start, End) range of positions in a sorted key
// array. Segments exist only while an index is built; afterwards only the
// per-segment model and error bound survive.
type Segment struct {
	Start int
	End   int
}

// Len returns the number of positions the segment covers.
func (s Segment) Len() int { return s.End - s.Start }

// PartitionEqual splits [0, n) into numSegments contiguous ranges of
// ceil(n/numSegments) positions each, the last truncated to fit. Trailing
// segments are empty when numSegments exceeds n. The ranges cover [0, n)
// with no gaps or overlaps.
func PartitionEqual(n, numSegments int) []Segment {
	if numSegments < 1 {
		numSegments = 1
	}
	size := (n + numSegments - 1) / numSegments
	if size < 1 {
		size = 1
	}

	segments := make([]Segment, 0, numSegments)
	for i := 0; i < numSegments; i++ {
		start := i * size
		if start > n {
			start = n
		}
		end := start + size
		if end > n {
			end = n
		}
		segments = append(segments, Segment{Start: start, End: end})
	}
	return segments
}

// PartitionAdaptive grows each segment greedily while the incrementally
// refit line keeps the newly appended key within maxError positions of its
// true rank, emitting a boundary once the budget would be exceeded. The
// segment count varies with how piecewise-linear the key distribution is;
// near-linear data collapses to a single segment.
//
// The per-append check is against the point being added, not a rescan of
// the whole segment, so the budget is a target rather than a guarantee.
// The exact bound an index relies on is always recomputed over every
// training point after leaves are fit.
func PartitionAdaptive(keys []common.KeyType, maxError int) []Segment {
	n := len(keys)
	if maxError < 0 {
		maxError = 0
	}

	var segments []Segment
	start := 0
	var nPts, sumX, sumY, sumXY, sumXX float64

	for i := 0; i < n; i++ {
		x := float64(keys[i])
		y := float64(i)

		if i > start {
			slope, intercept := solve(nPts+1, sumX+x, sumY+y, sumXY+x*y, sumXX+x*x)
			predicted := int(math.Round(slope*x + intercept))
			if d := predicted - i; d > maxError || -d > maxError {
				segments = append(segments, Segment{Start: start, End: i})
				start = i
				nPts, sumX, sumY, sumXY, sumXX = 0, 0, 0, 0, 0
			}
		}

		nPts++
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	segments = append(segments, Segment{Start: start, End: n})
	return segments
}
