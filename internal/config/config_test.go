package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.IdentifierColumn != "id" {
		t.Errorf("default identifier column = %q, want id", cfg.IdentifierColumn)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero partition size", func(c *Config) { c.TargetPartitionSize = 0 }},
		{"negative partition size", func(c *Config) { c.TargetPartitionSize = -5 }},
		{"empty storage root", func(c *Config) { c.StorageRoot = "" }},
		{"empty identifier column", func(c *Config) { c.IdentifierColumn = "" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pallet.yaml")
	content := `
target_partition_size: 5000
storage_root: /tmp/wh
strict_io: true
log:
  level: debug
  format: json
bench:
  rows: 500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TargetPartitionSize != 5000 {
		t.Errorf("TargetPartitionSize = %d", cfg.TargetPartitionSize)
	}
	if cfg.StorageRoot != "/tmp/wh" {
		t.Errorf("StorageRoot = %q", cfg.StorageRoot)
	}
	if !cfg.StrictIO {
		t.Error("StrictIO should be true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Bench.Rows != 500 {
		t.Errorf("Bench.Rows = %d", cfg.Bench.Rows)
	}
	// Unset fields keep defaults.
	if cfg.IdentifierColumn != "id" {
		t.Errorf("IdentifierColumn = %q, want default", cfg.IdentifierColumn)
	}
}

func TestLoadFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pallet.json")
	content := `{"target_partition_size": 2500, "storage_root": "/tmp/wh2"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TargetPartitionSize != 2500 {
		t.Errorf("TargetPartitionSize = %d", cfg.TargetPartitionSize)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PALLET_STORAGE_ROOT", "/env/root")
	t.Setenv("PALLET_TARGET_PARTITION_SIZE", "1234")
	t.Setenv("PALLET_STRICT_IO", "true")
	t.Setenv("PALLET_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.StorageRoot != "/env/root" {
		t.Errorf("StorageRoot = %q", cfg.StorageRoot)
	}
	if cfg.TargetPartitionSize != 1234 {
		t.Errorf("TargetPartitionSize = %d", cfg.TargetPartitionSize)
	}
	if !cfg.StrictIO {
		t.Error("StrictIO should be true")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
