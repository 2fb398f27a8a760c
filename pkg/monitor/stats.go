package monitor

import (
	"sync/atomic"
)

// SearchStats counts learned-index search outcomes. The fallback counter is
// the diagnostic the harness uses to judge predictor quality: a fallback
// means the bounded window missed and the whole array had to be searched.
type SearchStats struct {
	Searches     uint64
	WindowHits   uint64
	Fallbacks    uint64
	OverflowHits uint64
}

func NewSearchStats() *SearchStats {
	return &SearchStats{}
}

func (ss *SearchStats) RecordSearch() {
	atomic.AddUint64(&ss.Searches, 1)
}

func (ss *SearchStats) RecordWindowHit() {
	atomic.AddUint64(&ss.WindowHits, 1)
}

func (ss *SearchStats) RecordFallback() {
	atomic.AddUint64(&ss.Fallbacks, 1)
}

func (ss *SearchStats) RecordOverflowHit() {
	atomic.AddUint64(&ss.OverflowHits, 1)
}

func (ss *SearchStats) SearchCount() uint64 {
	return atomic.LoadUint64(&ss.Searches)
}

func (ss *SearchStats) FallbackCount() uint64 {
	return atomic.LoadUint64(&ss.Fallbacks)
}

func (ss *SearchStats) OverflowHitCount() uint64 {
	return atomic.LoadUint64(&ss.OverflowHits)
}

// FallbackRate is fallbacks per search, 0 when nothing was searched.
func (ss *SearchStats) FallbackRate() float64 {
	searches := atomic.LoadUint64(&ss.Searches)
	if searches == 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&ss.Fallbacks)) / float64(searches)
}
