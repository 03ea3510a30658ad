package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvquery/csvsql/internal/writer"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, "lines", cfg.AggregateLayout)
	assert.Equal(t, "none", cfg.Compression)
	assert.Equal(t, 64*1024, cfg.BufferSize)
	assert.Equal(t, 1<<20, cfg.FlushBytes)
	assert.False(t, cfg.StripCR)
	assert.Equal(t, 1, cfg.CountWorkers)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CSVSQL_OUTPUT_FORMAT", "JSONL")
	t.Setenv("CSVSQL_SCAN_STRIP_CR", "true")
	t.Setenv("CSVSQL_SCAN_COUNT_WORKERS", "4")
	t.Setenv("CSVSQL_LOG_LEVEL", "debug")

	cfg, err := load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "jsonl", cfg.OutputFormat)
	assert.True(t, cfg.StripCR)
	assert.Equal(t, 4, cfg.CountWorkers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output:
  aggregate_layout: pairs
  compression: lz4
  flush_bytes: 0
`), 0644))

	cfg, err := load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "pairs", cfg.AggregateLayout)
	assert.Equal(t, "lz4", cfg.Compression)
	assert.Equal(t, 0, cfg.FlushBytes)

	wc := cfg.WriterConfig()
	assert.Equal(t, writer.LayoutPairs, wc.AggregateLayout)
	assert.Equal(t, writer.CompressionLZ4, wc.Compression)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			LogLevel:        "info",
			OutputFormat:    "csv",
			AggregateLayout: "lines",
			Compression:     "none",
			BufferSize:      1024,
			CountWorkers:    1,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"bad format", func(c *Config) { c.OutputFormat = "xml" }, false},
		{"bad layout", func(c *Config) { c.AggregateLayout = "grid" }, false},
		{"bad compression", func(c *Config) { c.Compression = "zstd" }, false},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, false},
		{"negative flush", func(c *Config) { c.FlushBytes = -1 }, false},
		{"zero workers", func(c *Config) { c.CountWorkers = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
