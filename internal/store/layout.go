// Package store reads and writes partition files as header-first CSV.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// partitionFilePattern names a partition file from its ordinal.
const partitionFilePattern = "part_%d.csv"

// Layout maps partition ordinals to file paths under a storage root and
// answers the raw filesystem probes the metadata cache falls back to.
// It implements meta.Prober.
type Layout struct {
	root string
}

// NewLayout creates a Layout rooted at the given directory.
func NewLayout(root string) Layout {
	return Layout{root: root}
}

// Root returns the storage root directory.
func (l Layout) Root() string {
	return l.root
}

// Path returns the backing file path for the given partition ordinal.
func (l Layout) Path(ordinal int) string {
	return filepath.Join(l.root, fmt.Sprintf(partitionFilePattern, ordinal))
}

// PartitionExists reports whether the partition's backing file exists.
func (l Layout) PartitionExists(ordinal int) bool {
	info, err := os.Stat(l.Path(ordinal))
	return err == nil && !info.IsDir()
}

// PartitionHeader reads the partition's header row from disk.
func (l Layout) PartitionHeader(ordinal int) ([]string, error) {
	f, err := os.Open(l.Path(ordinal))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.Read()
}
