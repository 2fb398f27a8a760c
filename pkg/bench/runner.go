package bench

import (
	"encoding/csv"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"rankidx/pkg/common"
)

// Engine is the contract the suite drives: consume a sorted key array,
// answer membership queries, and report a space figure in engine-specific
// units (model parameters, key slots, stored entries).
type Engine interface {
	Name() string
	Build(keys []common.KeyType) error
	Search(key common.KeyType) bool
	SpaceCells() int
}

type Result struct {
	Engine      string
	Config      string
	Operation   string
	DataSize    int
	LatencyNs   int64
	AllocMB     uint64
	HeapObjects uint64
	Extra       string
}

type MemoryStats struct {
	AllocMB      uint64
	TotalAllocMB uint64
	HeapObjects  uint64
}

// ReadMemory forces a GC first so the numbers reflect live data rather
// than garbage from the previous suite.
func ReadMemory() MemoryStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		HeapObjects:  m.HeapObjects,
	}
}

func WriteHeader(w *csv.Writer) error {
	return w.Write([]string{"Engine", "Config", "Operation", "DataSize", "LatencyNs", "AllocMB", "HeapObjects", "Extra"})
}

func WriteResult(w *csv.Writer, r Result) error {
	return w.Write([]string{
		r.Engine,
		r.Config,
		r.Operation,
		strconv.Itoa(r.DataSize),
		strconv.FormatInt(r.LatencyNs, 10),
		strconv.FormatUint(r.AllocMB, 10),
		strconv.FormatUint(r.HeapObjects, 10),
		r.Extra,
	})
}

// RunSuite builds the engine over keys and times the query mix, returning
// one Result per measured operation. Build latency is total nanoseconds;
// search latency is the per-query average.
func RunSuite(e Engine, cfgLabel string, keys, queries []common.KeyType) ([]Result, error) {
	start := time.Now()
	if err := e.Build(keys); err != nil {
		return nil, fmt.Errorf("build %s: %w", e.Name(), err)
	}
	buildNs := time.Since(start).Nanoseconds()

	mem := ReadMemory()
	results := []Result{{
		Engine:      e.Name(),
		Config:      cfgLabel,
		Operation:   "Build",
		DataSize:    len(keys),
		LatencyNs:   buildNs,
		AllocMB:     mem.AllocMB,
		HeapObjects: mem.HeapObjects,
		Extra:       fmt.Sprintf("space_cells=%d", e.SpaceCells()),
	}}

	hits := 0
	start = time.Now()
	for _, q := range queries {
		if e.Search(q) {
			hits++
		}
	}
	perQuery := int64(0)
	if len(queries) > 0 {
		perQuery = time.Since(start).Nanoseconds() / int64(len(queries))
	}
	results = append(results, Result{
		Engine:    e.Name(),
		Config:    cfgLabel,
		Operation: "Search",
		DataSize:  len(keys),
		LatencyNs: perQuery,
		AllocMB:   mem.AllocMB,
		Extra:     fmt.Sprintf("hits=%d/%d", hits, len(queries)),
	})

	return results, nil
}
