package snapshot

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletdb/pallet/internal/meta"
	"github.com/palletdb/pallet/internal/store"
	"github.com/palletdb/pallet/pkg/types"
)

func seedPartitions(t *testing.T, root string) {
	t.Helper()
	layout := store.NewLayout(root)
	s := store.New(layout, meta.NewCache(layout), slog.New(slog.DiscardHandler))
	for i := 1; i <= 6; i++ {
		rec := types.NewRecord()
		rec.Set("id", types.Int(int64(i)))
		rec.Set("name", types.Text("row"))
		require.NoError(t, s.Append(i%2, rec))
	}
}

func TestCreateAndRestoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	snapDir := filepath.Join(t.TempDir(), "snap")
	restored := filepath.Join(t.TempDir(), "restored")

	seedPartitions(t, root)

	manifest, err := Create(root, snapDir)
	require.NoError(t, err)
	require.NotEmpty(t, manifest.SnapshotID)
	require.Len(t, manifest.Files, 2)
	for _, f := range manifest.Files {
		assert.Positive(t, f.RawSize)
		assert.Positive(t, f.CompressedSize)
		_, err := os.Stat(filepath.Join(snapDir, f.Name+".sz"))
		assert.NoError(t, err)
	}

	_, err = os.Stat(filepath.Join(snapDir, ManifestName))
	require.NoError(t, err)

	back, err := Restore(snapDir, restored)
	require.NoError(t, err)
	assert.Equal(t, manifest.SnapshotID, back.SnapshotID)

	// Restored partition files are byte-identical to the originals.
	for _, f := range manifest.Files {
		orig, err := os.ReadFile(filepath.Join(root, f.Name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(restored, f.Name))
		require.NoError(t, err)
		assert.Equal(t, orig, got, f.Name)
	}
}

func TestCreateMissingRootFails(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
}

func TestCreateSkipsNonPartitionFiles(t *testing.T) {
	root := t.TempDir()
	seedPartitions(t, root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	manifest, err := Create(root, filepath.Join(t.TempDir(), "snap"))
	require.NoError(t, err)
	for _, f := range manifest.Files {
		assert.NotEqual(t, "notes.txt", f.Name)
	}
}

func TestRestoreMissingManifestFails(t *testing.T) {
	_, err := Restore(t.TempDir(), t.TempDir())
	require.Error(t, err)
}

func TestRestoreCorruptManifestFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("{not json"), 0644))

	_, err := Restore(dir, t.TempDir())
	require.Error(t, err)
}
