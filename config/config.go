// Package config provides the configuration of benchmark runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/benchtracker/kvstore"
	"github.com/weiihann/benchtracker/workload"
)

// Config holds the configuration of a benchmark run.
type Config struct {
	// Workload controls workload generation
	Workload WorkloadConfig `json:"workload" yaml:"workload"`

	// Run controls how the workload is replayed
	Run RunConfig `json:"run" yaml:"run"`
}

// WorkloadConfig holds workload generation parameters.
type WorkloadConfig struct {
	// Path points to a pre-generated workload; generation is skipped when set
	Path string `json:"path" yaml:"path"`

	Keys         int     `json:"keys" yaml:"keys"`
	Prefixes     int     `json:"prefixes" yaml:"prefixes"`
	Partitions   int     `json:"partitions" yaml:"partitions"`
	Operations   int     `json:"operations" yaml:"operations"`
	WriteRatio   float64 `json:"write_ratio" yaml:"write_ratio"`
	DeleteRatio  float64 `json:"delete_ratio" yaml:"delete_ratio"`
	ChildRatio   float64 `json:"child_ratio" yaml:"child_ratio"`
	Distribution string  `json:"distribution" yaml:"distribution"`

	// Seed of the generator (0 = use current time)
	Seed int64 `json:"seed" yaml:"seed"`

	ValueSize int `json:"value_size" yaml:"value_size"`
}

// RunConfig holds benchmark execution parameters.
type RunConfig struct {
	// Backends to benchmark, in order
	Backends []string `json:"backends" yaml:"backends"`

	// Repeats is the number of executions per case; all but the first
	// are redundant
	Repeats int `json:"repeats" yaml:"repeats"`

	// Workers is the number of goroutines executing a pass
	Workers int `json:"workers" yaml:"workers"`

	// DBDir is the base directory for backend databases
	DBDir string `json:"db_dir" yaml:"db_dir"`

	// Timeout bounds a single case
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Workload: WorkloadConfig{
			Keys:         10000,
			Prefixes:     16,
			Partitions:   8,
			Operations:   50000,
			WriteRatio:   0.3,
			DeleteRatio:  0.05,
			ChildRatio:   0.2,
			Distribution: "power-law",
			ValueSize:    32,
		},
		Run: RunConfig{
			Backends: []string{"memory"},
			Repeats:  5,
			Workers:  1,
			DBDir:    "tmp",
			Timeout:  30 * time.Minute,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Run.Backends) == 0 {
		return fmt.Errorf("at least one backend is required")
	}

	for _, b := range c.Run.Backends {
		if !slices.Contains(kvstore.KnownBackends(), b) {
			return fmt.Errorf("unknown backend %q (must be one of %s)",
				b, strings.Join(kvstore.KnownBackends(), ", "))
		}
	}

	if c.Run.Repeats < 1 {
		return fmt.Errorf("repeats must be at least 1, got %d", c.Run.Repeats)
	}

	if c.Run.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Run.Workers)
	}

	if c.Workload.Path != "" {
		return nil
	}

	if c.Workload.Keys < 1 {
		return fmt.Errorf("workload.keys must be at least 1, got %d", c.Workload.Keys)
	}

	for name, ratio := range map[string]float64{
		"write_ratio":  c.Workload.WriteRatio,
		"delete_ratio": c.Workload.DeleteRatio,
		"child_ratio":  c.Workload.ChildRatio,
	} {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("workload.%s must be between 0 and 1, got %g", name, ratio)
		}
	}

	switch c.Workload.Distribution {
	case "power-law", "exponential", "uniform":
	default:
		return fmt.Errorf("invalid distribution: %s (must be power-law, exponential, or uniform)",
			c.Workload.Distribution)
	}

	return nil
}

// GeneratorConfig returns the workload generator configuration.
func (c *Config) GeneratorConfig() workload.Config {
	seed := c.Workload.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return workload.Config{
		NumKeys:       c.Workload.Keys,
		NumPrefixes:   c.Workload.Prefixes,
		NumPartitions: c.Workload.Partitions,
		NumOperations: c.Workload.Operations,
		WriteRatio:    c.Workload.WriteRatio,
		DeleteRatio:   c.Workload.DeleteRatio,
		ChildRatio:    c.Workload.ChildRatio,
		Distribution:  c.Workload.Distribution,
		Seed:          seed,
		ValueSize:     c.Workload.ValueSize,
	}
}

// LoadFromFile loads configuration from a YAML or JSON file on top of
// the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides configuration from environment variables.
// Environment variables use the BENCHTRACKER_ prefix.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("BENCHTRACKER_BACKENDS"); v != "" {
		cfg.Run.Backends = strings.Split(v, ",")
	}
	if v := os.Getenv("BENCHTRACKER_DB_DIR"); v != "" {
		cfg.Run.DBDir = v
	}
	if v := os.Getenv("BENCHTRACKER_REPEATS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BENCHTRACKER_REPEATS: %w", err)
		}
		cfg.Run.Repeats = n
	}
	if v := os.Getenv("BENCHTRACKER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BENCHTRACKER_WORKERS: %w", err)
		}
		cfg.Run.Workers = n
	}

	return nil
}
