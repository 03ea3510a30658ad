// Package config loads csvsql settings from CSVSQL_* environment variables
// and an optional config file named by CSVSQL_CONFIG.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/csvquery/csvsql/internal/writer"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CSVSQL"

// Config holds runtime settings that are not part of the query text.
type Config struct {
	LogLevel string

	OutputFormat    string
	AggregateLayout string
	Compression     string
	BufferSize      int
	FlushBytes      int

	StripCR      bool
	CountWorkers int
}

// keys maps config keys to their defaults. Nested keys use "." in files and
// "_" in environment variables (CSVSQL_OUTPUT_FORMAT for output.format).
var keys = map[string]any{
	"log.level":               "warn",
	"output.format":           string(writer.FormatCSV),
	"output.aggregate_layout": string(writer.LayoutLines),
	"output.compression":      string(writer.CompressionNone),
	"output.buffer_size":      64 * 1024,
	"output.flush_bytes":      1 << 20,
	"scan.strip_cr":           false,
	"scan.count_workers":      1,
}

// Load reads configuration. A missing CSVSQL_CONFIG is fine; a named file
// that cannot be read is an error.
func Load() (*Config, error) {
	return load(viper.New(), os.Getenv(EnvPrefix+"_CONFIG"))
}

func load(v *viper.Viper, file string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, def := range keys {
		v.SetDefault(key, def)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		LogLevel:        v.GetString("log.level"),
		OutputFormat:    strings.ToLower(v.GetString("output.format")),
		AggregateLayout: strings.ToLower(v.GetString("output.aggregate_layout")),
		Compression:     strings.ToLower(v.GetString("output.compression")),
		BufferSize:      v.GetInt("output.buffer_size"),
		FlushBytes:      v.GetInt("output.flush_bytes"),
		StripCR:         v.GetBool("scan.strip_cr"),
		CountWorkers:    v.GetInt("scan.count_workers"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch writer.Format(c.OutputFormat) {
	case writer.FormatCSV, writer.FormatJSONL, writer.FormatTable:
	default:
		return fmt.Errorf("output.format: unknown format %q", c.OutputFormat)
	}
	switch writer.Layout(c.AggregateLayout) {
	case writer.LayoutLines, writer.LayoutPairs:
	default:
		return fmt.Errorf("output.aggregate_layout: unknown layout %q", c.AggregateLayout)
	}
	switch writer.Compression(c.Compression) {
	case writer.CompressionNone, writer.CompressionLZ4:
	default:
		return fmt.Errorf("output.compression: unknown compression %q", c.Compression)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("output.buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.FlushBytes < 0 {
		return fmt.Errorf("output.flush_bytes must not be negative, got %d", c.FlushBytes)
	}
	if c.CountWorkers < 1 {
		return fmt.Errorf("scan.count_workers must be at least 1, got %d", c.CountWorkers)
	}
	return nil
}

// WriterConfig returns the output settings in the form the writer expects.
func (c *Config) WriterConfig() writer.WriterConfig {
	return writer.WriterConfig{
		Format:          writer.Format(c.OutputFormat),
		AggregateLayout: writer.Layout(c.AggregateLayout),
		Compression:     writer.Compression(c.Compression),
		BufferSize:      c.BufferSize,
		FlushBytes:      c.FlushBytes,
	}
}
