package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Benchmark BenchmarkConfig `yaml:"benchmark"`
	RMI       RMIConfig       `yaml:"rmi"`
	BTree     BTreeConfig     `yaml:"btree"`
	Reference ReferenceConfig `yaml:"reference"`
	Dataset   DatasetConfig   `yaml:"dataset"`
}

type BenchmarkConfig struct {
	DataSizes []int  `yaml:"data_sizes"`
	Searches  int    `yaml:"searches"`
	Seed      int64  `yaml:"seed"`
	OutputDir string `yaml:"output_dir"`
}

type RMIConfig struct {
	LeafModels   int    `yaml:"leaf_models"`
	Partition    string `yaml:"partition"` // "equal" or "adaptive"
	MaxLeafError int    `yaml:"max_leaf_error"`
}

type BTreeConfig struct {
	Order int `yaml:"order"`
}

type ReferenceConfig struct {
	Degree int `yaml:"degree"`
}

type DatasetConfig struct {
	StorePath   string `yaml:"store_path"`   // sqlite file; empty = generate in memory only
	RangeFactor int64  `yaml:"range_factor"` // keys drawn from [0, size*range_factor]
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Benchmark: BenchmarkConfig{
			DataSizes: []int{1000, 10000, 100000},
			Searches:  500,
			Seed:      42,
			OutputDir: "results",
		},
		RMI: RMIConfig{
			LeafModels:   100,
			Partition:    "equal",
			MaxLeafError: 32,
		},
		BTree: BTreeConfig{
			Order: 3,
		},
		Reference: ReferenceConfig{
			Degree: 32,
		},
		Dataset: DatasetConfig{
			RangeFactor: 10,
		},
	}

	if configPath == "" {
		for _, p := range []string{"configs/rankidx.yaml", "rankidx.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Benchmark.DataSizes) == 0 {
		cfg.Benchmark.DataSizes = []int{1000, 10000, 100000}
	}
	if cfg.Benchmark.Searches <= 0 {
		cfg.Benchmark.Searches = 500
	}
	if cfg.Benchmark.OutputDir == "" {
		cfg.Benchmark.OutputDir = "results"
	}
	if cfg.RMI.LeafModels <= 0 {
		cfg.RMI.LeafModels = 100
	}
	if cfg.RMI.Partition != "adaptive" {
		cfg.RMI.Partition = "equal"
	}
	if cfg.RMI.MaxLeafError <= 0 {
		cfg.RMI.MaxLeafError = 32
	}
	if cfg.BTree.Order < 2 {
		cfg.BTree.Order = 3
	}
	if cfg.Reference.Degree < 2 {
		cfg.Reference.Degree = 32
	}
	if cfg.Dataset.RangeFactor <= 0 {
		cfg.Dataset.RangeFactor = 10
	}
}
