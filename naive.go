package pallet

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	palleterrors "github.com/palletdb/pallet/internal/errors"
	"github.com/palletdb/pallet/pkg/types"
)

// Naive is the unpartitioned baseline: every record lives in one CSV
// file, every operation other than insert reads the whole file. It
// implements the same Warehouse contract and the same single-match
// update / all-match delete semantics as Partitioned, and exists as the
// comparison point for the benchmark harness.
type Naive struct {
	opts options
	path string
}

var _ Warehouse = (*Naive)(nil)

// NewNaive creates a naive warehouse backed by the CSV file at path. The
// file is created on first insert.
func NewNaive(path string, opts ...Option) (*Naive, error) {
	if path == "" {
		return nil, palleterrors.NewValidationError(palleterrors.CodeInvalidConfig,
			"file path must not be empty")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Naive{opts: o, path: path}, nil
}

// Insert appends one record to the file, creating it with a header on
// first write. Unlike the partitioned warehouse no identifier is
// required; there is nothing to route.
func (w *Naive) Insert(rec types.Record) error {
	header, err := w.readHeader()
	if err != nil {
		return err
	}

	if header == nil {
		f, err := os.Create(w.path)
		if err != nil {
			return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
				"failed to create warehouse file", err)
		}
		defer f.Close()

		header = rec.Columns()
		cw := csv.NewWriter(f)
		if err := cw.Write(header); err != nil {
			return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
				"failed to write header", err)
		}
		if err := cw.Write(naiveAlignRow(header, rec)); err != nil {
			return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
				"failed to write record", err)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
				"failed to flush warehouse file", err)
		}
		return nil
	}

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeOpenFailed,
			"failed to open warehouse file", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(naiveAlignRow(header, rec)); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to append record", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to flush warehouse file", err)
	}
	return nil
}

// Update merges patch into the first record whose matchColumn equals
// matchValue, then rewrites the whole file.
func (w *Naive) Update(matchColumn string, matchValue types.Value, patch types.Record) error {
	records, err := w.readAll()
	if err != nil {
		if w.opts.strictIO {
			return err
		}
		w.opts.logger.Debug("update skipped unreadable warehouse file", "error", err)
		return nil
	}

	key := matchValue.String()
	for i := range records {
		if v, ok := records[i].Get(matchColumn); ok && v.String() == key {
			merged := records[i].Clone()
			for _, col := range patch.Columns() {
				pv, _ := patch.Get(col)
				merged.Set(col, pv)
			}
			records[i] = merged
			return w.rewrite(records)
		}
	}
	return nil
}

// Delete removes every record whose matchColumn equals matchValue. When
// the last record goes, the file goes with it.
func (w *Naive) Delete(matchColumn string, matchValue types.Value) error {
	records, err := w.readAll()
	if err != nil {
		if w.opts.strictIO {
			return err
		}
		w.opts.logger.Debug("delete skipped unreadable warehouse file", "error", err)
		return nil
	}

	key := matchValue.String()
	kept := records[:0:0]
	for _, rec := range records {
		if v, ok := rec.Get(matchColumn); ok && v.String() == key {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == len(records) {
		return nil
	}

	if len(kept) == 0 {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return palleterrors.NewStorageError(palleterrors.CodeDeleteFailed,
				"failed to remove emptied warehouse file", err)
		}
		return nil
	}
	return w.rewrite(kept)
}

// Query scans the whole file and returns records whose matchColumn equals
// any of the keys, in file order.
func (w *Naive) Query(matchColumn string, keys []types.Value) ([]types.Record, error) {
	results := []types.Record{}
	if len(keys) == 0 {
		return results, nil
	}

	records, err := w.readAll()
	if err != nil {
		if w.opts.strictIO {
			return nil, err
		}
		w.opts.logger.Debug("query treated unreadable warehouse file as empty", "error", err)
		return results, nil
	}

	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k.String()] = struct{}{}
	}
	for _, rec := range records {
		if v, ok := rec.Get(matchColumn); ok {
			if _, hit := keySet[v.String()]; hit {
				results = append(results, rec)
			}
		}
	}
	return results, nil
}

// readHeader returns the file's header row, or nil when the file does not
// exist yet.
func (w *Naive) readHeader() ([]string, error) {
	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, palleterrors.NewStorageError(palleterrors.CodeOpenFailed,
			"failed to open warehouse file", err)
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
			"failed to read header", err)
	}
	return header, nil
}

func (w *Naive) readAll() ([]types.Record, error) {
	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, palleterrors.NewStorageError(palleterrors.CodeOpenFailed,
			"failed to open warehouse file", err)
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
			"failed to read header", err)
	}

	var records []types.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, palleterrors.NewStorageError(palleterrors.CodeReadFailed,
				"failed to read row", err)
		}
		rec := types.NewRecord()
		for i, col := range header {
			if i < len(row) {
				rec.Set(col, types.Text(row[i]))
			}
		}
		records = append(records, rec)
	}
}

func (w *Naive) rewrite(records []types.Record) error {
	f, err := os.Create(w.path)
	if err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to rewrite warehouse file", err)
	}
	defer f.Close()

	header := records[0].Columns()
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to write header", err)
	}
	for _, rec := range records {
		if err := cw.Write(naiveAlignRow(header, rec)); err != nil {
			return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
				"failed to write record", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return palleterrors.NewStorageError(palleterrors.CodeWriteFailed,
			"failed to flush warehouse file", err)
	}
	return nil
}

func naiveAlignRow(header []string, rec types.Record) []string {
	row := make([]string, len(header))
	for i, col := range header {
		if v, ok := rec.Get(col); ok {
			row[i] = v.String()
		}
	}
	return row
}
