// Package snapshot copies a warehouse storage root into a compressed,
// restorable snapshot directory.
//
// A snapshot preserves partition files 1:1 (it never merges or compacts
// them): each file is snappy-compressed next to a JSON manifest recording
// the snapshot id and per-file sizes. Restoring decompresses every file
// into a storage root, which a warehouse opened with the same target
// partition size reads unchanged.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/palletdb/pallet/internal/errors"
)

const (
	// ManifestName is the manifest file written into every snapshot.
	ManifestName = "manifest.json"

	// compressedExt is appended to each compressed partition file.
	compressedExt = ".sz"
)

// Manifest describes one snapshot.
type Manifest struct {
	// SnapshotID uniquely identifies the snapshot.
	SnapshotID string `json:"snapshot_id"`

	// CreatedAt is the Unix timestamp the snapshot was taken.
	CreatedAt int64 `json:"created_at"`

	// Files lists every captured partition file.
	Files []FileEntry `json:"files"`
}

// FileEntry records one captured file.
type FileEntry struct {
	// Name is the original file name under the storage root.
	Name string `json:"name"`

	// RawSize is the uncompressed size in bytes.
	RawSize int64 `json:"raw_size"`

	// CompressedSize is the snappy-compressed size in bytes.
	CompressedSize int64 `json:"compressed_size"`
}

// Create snapshots every partition file under storageRoot into destDir.
func Create(storageRoot, destDir string) (*Manifest, error) {
	entries, err := os.ReadDir(storageRoot)
	if err != nil {
		return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
			"failed to read storage root", err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
			"failed to create snapshot directory", err)
	}

	manifest := &Manifest{
		SnapshotID: uuid.New().String(),
		CreatedAt:  time.Now().Unix(),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(storageRoot, entry.Name()))
		if err != nil {
			return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
				"failed to read partition file", err)
		}

		compressed := snappy.Encode(nil, raw)
		dest := filepath.Join(destDir, entry.Name()+compressedExt)
		if err := os.WriteFile(dest, compressed, 0644); err != nil {
			return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
				"failed to write compressed file", err)
		}

		manifest.Files = append(manifest.Files, FileEntry{
			Name:           entry.Name(),
			RawSize:        int64(len(raw)),
			CompressedSize: int64(len(compressed)),
		})
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, errors.NewInternalError("failed to encode manifest", err)
	}
	if err := os.WriteFile(filepath.Join(destDir, ManifestName), data, 0644); err != nil {
		return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
			"failed to write manifest", err)
	}
	return manifest, nil
}

// Restore decompresses a snapshot into storageRoot, which is created if
// absent. Existing files with the same names are overwritten.
func Restore(snapshotDir, storageRoot string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(snapshotDir, ManifestName))
	if err != nil {
		return nil, errors.NewSnapshotError(errors.CodeManifestCorrupt,
			"failed to read manifest", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.NewSnapshotError(errors.CodeManifestCorrupt,
			"failed to parse manifest", err)
	}

	if err := os.MkdirAll(storageRoot, 0755); err != nil {
		return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
			"failed to create storage root", err)
	}

	for _, file := range manifest.Files {
		compressed, err := os.ReadFile(filepath.Join(snapshotDir, file.Name+compressedExt))
		if err != nil {
			return nil, errors.NewSnapshotError(errors.CodeManifestCorrupt,
				"snapshot file missing", err)
		}

		raw, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
				"failed to decompress snapshot file", err)
		}

		if err := os.WriteFile(filepath.Join(storageRoot, file.Name), raw, 0644); err != nil {
			return nil, errors.NewSnapshotError(errors.CodeCompressFailed,
				"failed to restore partition file", err)
		}
	}
	return &manifest, nil
}
