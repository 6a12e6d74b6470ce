// Package config provides unified configuration for pallet warehouses and
// tooling.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/palletdb/pallet/internal/errors"
)

// Config holds the configuration for a partitioned warehouse.
type Config struct {
	// TargetPartitionSize is the target number of records per partition.
	// The partition count is derived from it and is fixed for the
	// lifetime of a storage root.
	TargetPartitionSize int `json:"target_partition_size" yaml:"target_partition_size"`

	// StorageRoot is the directory holding the partition files.
	StorageRoot string `json:"storage_root" yaml:"storage_root"`

	// IdentifierColumn is the column used for hash-based partition
	// routing. Defaults to "id".
	IdentifierColumn string `json:"identifier_column" yaml:"identifier_column"`

	// StrictIO surfaces read failures to the caller instead of
	// collapsing them to empty results.
	StrictIO bool `json:"strict_io" yaml:"strict_io"`

	// Log configures the warehouse logger.
	Log LogConfig `json:"log" yaml:"log"`

	// Bench configures the benchmark harness.
	Bench BenchConfig `json:"bench" yaml:"bench"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is the log output format: text or json.
	Format string `json:"format" yaml:"format"`
}

// BenchConfig holds benchmark harness configuration.
type BenchConfig struct {
	// Rows is the number of fake records to generate.
	Rows int `json:"rows" yaml:"rows"`

	// Updates is the number of random point updates to run.
	Updates int `json:"updates" yaml:"updates"`

	// Queries is the number of random multi-key queries to run.
	Queries int `json:"queries" yaml:"queries"`

	// Deletes is the number of random point deletes to run.
	Deletes int `json:"deletes" yaml:"deletes"`

	// NaiveFile is the CSV path for the unpartitioned baseline.
	NaiveFile string `json:"naive_file" yaml:"naive_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TargetPartitionSize: 1000,
		StorageRoot:         "./pallet-data",
		IdentifierColumn:    "id",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Bench: BenchConfig{
			Rows:      10000,
			Updates:   100,
			Queries:   100,
			Deletes:   1000,
			NaiveFile: "./naive_warehouse.csv",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.TargetPartitionSize <= 0 {
		return errors.NewValidationError(errors.CodeInvalidConfig,
			fmt.Sprintf("target_partition_size must be > 0, got %d", c.TargetPartitionSize))
	}
	if c.StorageRoot == "" {
		return errors.NewValidationError(errors.CodeInvalidConfig,
			"storage_root must not be empty")
	}
	if c.IdentifierColumn == "" {
		return errors.NewValidationError(errors.CodeInvalidConfig,
			"identifier_column must not be empty")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.NewValidationError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file, starting
// from the defaults. The format is chosen by file extension.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overrides configuration fields from PALLET_* environment
// variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("PALLET_STORAGE_ROOT"); v != "" {
		cfg.StorageRoot = v
	}
	if v := os.Getenv("PALLET_TARGET_PARTITION_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TargetPartitionSize = n
		}
	}
	if v := os.Getenv("PALLET_IDENTIFIER_COLUMN"); v != "" {
		cfg.IdentifierColumn = v
	}
	if v := os.Getenv("PALLET_STRICT_IO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictIO = b
		}
	}
	if v := os.Getenv("PALLET_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PALLET_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Logger builds a slog.Logger from the log configuration, writing to
// stderr.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
