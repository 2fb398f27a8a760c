package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"rankidx/pkg/bench"
	"rankidx/pkg/common"
	"rankidx/pkg/config"
	"rankidx/pkg/dataset"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: configs/rankidx.yaml)")
	noPlots := flag.Bool("no-plots", false, "skip PNG chart output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Benchmark.OutputDir, 0755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	csvPath := filepath.Join(cfg.Benchmark.OutputDir, "results.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		log.Fatalf("create %s: %v", csvPath, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	bench.WriteHeader(w)

	var store *dataset.Store
	if cfg.Dataset.StorePath != "" {
		store, err = dataset.OpenStore(cfg.Dataset.StorePath)
		if err != nil {
			log.Fatalf("open dataset store: %v", err)
		}
		defer store.Close()
	}

	rng := rand.New(rand.NewSource(cfg.Benchmark.Seed))

	fmt.Printf("rankidx benchmark (sizes=%v searches=%d seed=%d)\n",
		cfg.Benchmark.DataSizes, cfg.Benchmark.Searches, cfg.Benchmark.Seed)
	fmt.Println("---------------------------------------------------")

	// Per-engine series across sizes, for the charts.
	engineNames := []string{}
	buildSeries := map[string]*bench.Series{}
	searchSeries := map[string]*bench.Series{}

	for _, size := range cfg.Benchmark.DataSizes {
		keys := loadOrGenerate(store, rng, cfg, size)
		queries := makeQueries(rng, keys, cfg.Benchmark.Searches, cfg.Dataset.RangeFactor)
		fmt.Printf(">> size=%d (%d queries)\n", len(keys), len(queries))

		engines := []bench.Engine{
			&bench.RMIEngine{
				LeafModels:   cfg.RMI.LeafModels,
				Adaptive:     cfg.RMI.Partition == "adaptive",
				MaxLeafError: cfg.RMI.MaxLeafError,
			},
			&bench.BTreeEngine{Order: cfg.BTree.Order},
			&bench.GoogleBTree{Degree: cfg.Reference.Degree},
			&bench.TreeMap{},
		}

		for _, e := range engines {
			results, err := bench.RunSuite(e, engineConfig(cfg, e), keys, queries)
			if err != nil {
				log.Fatalf("suite %s: %v", e.Name(), err)
			}
			for _, r := range results {
				if err := bench.WriteResult(w, r); err != nil {
					log.Fatalf("write result: %v", err)
				}
				track(&engineNames, buildSeries, searchSeries, r)
				fmt.Printf("   %-14s %-6s %12d ns  %s\n", r.Engine, r.Operation, r.LatencyNs, r.Extra)
			}

			if rmi, ok := e.(*bench.RMIEngine); ok {
				idx := rmi.Index()
				fmt.Printf("   %-14s leaves=%d params=%d fallbacks=%d overflow=%d\n",
					"", idx.NumLeaves(), idx.ParameterCount(), idx.FallbackCount(), idx.OverflowLen())
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush csv: %v", err)
	}

	if !*noPlots {
		savePlots(cfg.Benchmark.OutputDir, engineNames, buildSeries, searchSeries)
	}

	fmt.Println("---------------------------------------------------")
	fmt.Printf("Results written to %s\n", csvPath)
}

func loadOrGenerate(store *dataset.Store, rng *rand.Rand, cfg *config.Config, size int) []common.KeyType {
	name := fmt.Sprintf("uniform-%d", size)
	if store != nil {
		keys, err := store.Load(name)
		if err != nil {
			log.Fatalf("load dataset %s: %v", name, err)
		}
		if len(keys) > 0 {
			return keys
		}
	}

	keys := dataset.Generate(rng, size, 0, common.KeyType(int64(size)*cfg.Dataset.RangeFactor))
	if !common.IsSorted(keys) {
		log.Fatalf("generator produced unsorted keys")
	}
	if store != nil {
		if err := store.Save(name, keys); err != nil {
			log.Fatalf("save dataset %s: %v", name, err)
		}
	}
	return keys
}

// makeQueries mixes ~70% present keys with ~30% random probes that are
// mostly absent, mirroring a point-lookup workload.
func makeQueries(rng *rand.Rand, keys []common.KeyType, n int, rangeFactor int64) []common.KeyType {
	queries := make([]common.KeyType, 0, n)
	upper := int64(len(keys))*rangeFactor + 100
	for i := 0; i < n; i++ {
		if rng.Float64() < 0.7 && len(keys) > 0 {
			queries = append(queries, keys[rng.Intn(len(keys))])
		} else {
			queries = append(queries, common.KeyType(rng.Int63n(upper)))
		}
	}
	return queries
}

func engineConfig(cfg *config.Config, e bench.Engine) string {
	switch e.(type) {
	case *bench.RMIEngine:
		if cfg.RMI.Partition == "adaptive" {
			return fmt.Sprintf("max_err=%d", cfg.RMI.MaxLeafError)
		}
		return fmt.Sprintf("leaves=%d", cfg.RMI.LeafModels)
	case *bench.BTreeEngine:
		return fmt.Sprintf("t=%d", cfg.BTree.Order)
	case *bench.GoogleBTree:
		return fmt.Sprintf("degree=%d", cfg.Reference.Degree)
	default:
		return "-"
	}
}

func track(names *[]string, build, search map[string]*bench.Series, r bench.Result) {
	if _, ok := build[r.Engine]; !ok {
		*names = append(*names, r.Engine)
		build[r.Engine] = &bench.Series{Name: r.Engine}
		search[r.Engine] = &bench.Series{Name: r.Engine}
	}
	switch r.Operation {
	case "Build":
		s := build[r.Engine]
		s.Sizes = append(s.Sizes, r.DataSize)
		s.Values = append(s.Values, float64(r.LatencyNs)/1e6) // ms
	case "Search":
		s := search[r.Engine]
		s.Sizes = append(s.Sizes, r.DataSize)
		s.Values = append(s.Values, float64(r.LatencyNs))
	}
}

func savePlots(dir string, names []string, build, search map[string]*bench.Series) {
	collect := func(m map[string]*bench.Series) []bench.Series {
		out := make([]bench.Series, 0, len(names))
		for _, n := range names {
			out = append(out, *m[n])
		}
		return out
	}

	if err := bench.SavePlot(dir, "build_time", "Index construction", "build time (ms)", collect(build)); err != nil {
		log.Printf("plot build_time: %v", err)
	}
	if err := bench.SavePlot(dir, "search_latency", "Point lookup", "avg latency (ns)", collect(search)); err != nil {
		log.Printf("plot search_latency: %v", err)
	}
}
