package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadFromYAML(t *testing.T) {
	path := writeFile(t, "bench.yaml", `
workload:
  keys: 500
  distribution: uniform
  seed: 9
run:
  backends: [pebble, badger]
  repeats: 3
  timeout: 90s
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500, cfg.Workload.Keys)
	assert.Equal(t, "uniform", cfg.Workload.Distribution)
	assert.Equal(t, []string{"pebble", "badger"}, cfg.Run.Backends)
	assert.Equal(t, 3, cfg.Run.Repeats)
	assert.Equal(t, 90*time.Second, cfg.Run.Timeout)

	// Untouched fields keep their defaults.
	assert.Equal(t, 1, cfg.Run.Workers)
	assert.Equal(t, 0.3, cfg.Workload.WriteRatio)

	gen := cfg.GeneratorConfig()
	assert.Equal(t, int64(9), gen.Seed)
	assert.Equal(t, 500, gen.NumKeys)
}

func TestLoadFromJSON(t *testing.T) {
	path := writeFile(t, "bench.json", `{"run": {"backends": ["leveldb"], "workers": 4}}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"leveldb"}, cfg.Run.Backends)
	assert.Equal(t, 4, cfg.Run.Workers)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeFile(t, "bench.toml", "x = 1"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeFile(t, "bench.yaml", "run: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BENCHTRACKER_BACKENDS", "memory,pebble")
	t.Setenv("BENCHTRACKER_REPEATS", "7")

	cfg := DefaultConfig()
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, []string{"memory", "pebble"}, cfg.Run.Backends)
	assert.Equal(t, 7, cfg.Run.Repeats)

	t.Setenv("BENCHTRACKER_WORKERS", "many")
	assert.Error(t, LoadFromEnv(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no backends", func(c *Config) { c.Run.Backends = nil }},
		{"unknown backend", func(c *Config) { c.Run.Backends = []string{"rocksdb"} }},
		{"zero repeats", func(c *Config) { c.Run.Repeats = 0 }},
		{"zero workers", func(c *Config) { c.Run.Workers = 0 }},
		{"zero keys", func(c *Config) { c.Workload.Keys = 0 }},
		{"ratio above one", func(c *Config) { c.Workload.ChildRatio = 1.5 }},
		{"negative ratio", func(c *Config) { c.Workload.WriteRatio = -0.1 }},
		{"bad distribution", func(c *Config) { c.Workload.Distribution = "zipf" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSkipsGenerationWithPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workload.Path = "workload.jsonl"
	cfg.Workload.Keys = 0

	assert.NoError(t, cfg.Validate())
}
