package store

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"

	palleterrors "github.com/palletdb/pallet/internal/errors"
	"github.com/palletdb/pallet/internal/meta"
	"github.com/palletdb/pallet/pkg/types"
)

// Store performs all partition file I/O. It consults the metadata cache
// for fast-path existence and header decisions and keeps the cache
// current after every write. File handles are scoped to one call; none
// are held across operations.
type Store struct {
	layout Layout
	cache  *meta.Cache
	log    *slog.Logger
}

// New creates a Store over the given layout and cache.
func New(layout Layout, cache *meta.Cache, logger *slog.Logger) *Store {
	return &Store{layout: layout, cache: cache, log: logger}
}

// Layout returns the partition file layout.
func (s *Store) Layout() Layout {
	return s.layout
}

// Exists reports whether the partition exists, via the cache.
func (s *Store) Exists(ordinal int) bool {
	return s.cache.Exists(ordinal)
}

// Append writes one record to the end of the partition. The first record
// written to a partition creates the file and fixes its header from the
// record's column order. Later records are aligned to that header:
// columns the header does not know are dropped, header columns the record
// lacks are written blank. Schema drift is not detected.
func (s *Store) Append(ordinal int, rec types.Record) error {
	if !s.cache.Exists(ordinal) {
		return s.create(ordinal, rec)
	}

	header, ok := s.cache.Header(ordinal)
	if !ok {
		// The file exists but its header row is unreadable (typically a
		// zero-length file left by an interrupted write). Recreate it.
		s.log.Debug("partition header unreadable, recreating", "partition", ordinal)
		return s.create(ordinal, rec)
	}

	f, err := os.OpenFile(s.layout.Path(ordinal), os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeOpenFailed,
			"failed to open partition for append", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(alignRow(header, rec)); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to append record", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to flush partition", err)
	}

	s.cache.RecordWrite(ordinal, nil, 1)
	return nil
}

// create writes a fresh partition file holding the header derived from
// the record's column order plus the record itself.
func (s *Store) create(ordinal int, rec types.Record) error {
	if err := os.MkdirAll(s.layout.Root(), 0755); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to create storage root", err)
	}

	f, err := os.Create(s.layout.Path(ordinal))
	if err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to create partition", err)
	}
	defer f.Close()

	header := rec.Columns()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to write partition header", err)
	}
	if err := w.Write(alignRow(header, rec)); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to write record", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to flush partition", err)
	}

	s.cache.RecordWrite(ordinal, header, 1)
	return nil
}

// ReadAll loads every record of the partition into memory. An absent
// partition yields (nil, nil); I/O and parse failures yield a storage
// error that the facade collapses to "no data" in compatibility mode.
func (s *Store) ReadAll(ordinal int) ([]types.Record, error) {
	if !s.cache.Exists(ordinal) {
		return nil, nil
	}

	f, err := os.Open(s.layout.Path(ordinal))
	if err != nil {
		return nil, palleterrors.NewStorageError(palleterrors.CodeOpenFailed,
			"failed to open partition", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, palleterrors.NewStorageError(palleterrors.CodeReadFailed,
			"failed to read partition header", err)
	}

	var records []types.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, palleterrors.NewStorageError(palleterrors.CodeReadFailed,
				"failed to read partition row", err)
		}
		records = append(records, parseRow(header, row))
	}
}

// RewriteAll replaces the partition's contents. It is the only mutation
// primitive for update and delete: the whole file is rewritten no matter
// how few rows changed. An empty record set deletes the file and drops
// the cache entry; otherwise the header is taken from the first record.
func (s *Store) RewriteAll(ordinal int, records []types.Record) error {
	if len(records) == 0 {
		if err := os.Remove(s.layout.Path(ordinal)); err != nil && !os.IsNotExist(err) {
			return palleterrors.NewStorageError(palleterrors.CodeDeleteFailed,
				"failed to remove emptied partition", err)
		}
		s.cache.Drop(ordinal)
		return nil
	}

	f, err := os.Create(s.layout.Path(ordinal))
	if err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to rewrite partition", err)
	}
	defer f.Close()

	header := records[0].Columns()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to write partition header", err)
	}
	for _, rec := range records {
		if err := w.Write(alignRow(header, rec)); err != nil {
			return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
				"failed to write record", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to flush partition", err)
	}

	delta := int64(len(records)) - s.cache.RowCount(ordinal)
	s.cache.RecordWrite(ordinal, header, delta)
	return nil
}

// alignRow serializes a record under the given header: one field per
// header column, blank where the record has no value, record columns
// absent from the header dropped.
func alignRow(header []string, rec types.Record) []string {
	row := make([]string, len(header))
	for i, col := range header {
		if v, ok := rec.Get(col); ok {
			row[i] = v.String()
		}
	}
	return row
}

// parseRow builds a record from a raw CSV row under the given header.
// Short rows leave trailing header columns unset; extra fields beyond the
// header are dropped.
func parseRow(header, row []string) types.Record {
	rec := types.NewRecord()
	for i, col := range header {
		if i < len(row) {
			rec.Set(col, types.Text(row[i]))
		}
	}
	return rec
}
