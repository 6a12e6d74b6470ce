package store

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	palleterrors "github.com/palletdb/pallet/internal/errors"
	"github.com/palletdb/pallet/pkg/types"
)

// Scanner is a forward, single-use iterator over one partition's records.
// It never materializes the file, so match probes stay cheap on large
// partitions. Usage follows bufio.Scanner:
//
//	sc := store.Scan(p)
//	defer sc.Close()
//	for sc.Next() {
//	    rec := sc.Record()
//	    ...
//	}
//	err := sc.Err()
//
// An error mid-stream ends iteration early; Err reports it for callers
// running in strict mode.
type Scanner struct {
	f      *os.File
	r      *csv.Reader
	header []string
	cur    types.Record
	err    error
	done   bool
}

// Scan opens a Scanner over the partition. An absent partition yields an
// exhausted Scanner; open and header failures yield an exhausted Scanner
// whose Err is set.
func (s *Store) Scan(ordinal int) *Scanner {
	if !s.cache.Exists(ordinal) {
		return &Scanner{done: true}
	}

	f, err := os.Open(s.layout.Path(ordinal))
	if err != nil {
		return &Scanner{done: true, err: palleterrors.NewStorageError(
			palleterrors.CodeOpenFailed, "failed to open partition", err)}
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		sc := &Scanner{done: true}
		if !errors.Is(err, io.EOF) {
			sc.err = palleterrors.NewStorageError(palleterrors.CodeReadFailed,
				"failed to read partition header", err)
		}
		return sc
	}

	return &Scanner{f: f, r: r, header: header}
}

// Next advances to the next record. It returns false at end of file or on
// the first error; check Err to tell the two apart.
func (sc *Scanner) Next() bool {
	if sc.done {
		return false
	}
	row, err := sc.r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			sc.err = palleterrors.NewStorageError(palleterrors.CodeReadFailed,
				"failed to read partition row", err)
		}
		sc.Close()
		return false
	}
	sc.cur = parseRow(sc.header, row)
	return true
}

// Record returns the record read by the last successful Next.
func (sc *Scanner) Record() types.Record {
	return sc.cur
}

// Err returns the first error encountered while scanning, if any.
func (sc *Scanner) Err() error {
	return sc.err
}

// Close releases the underlying file. It is idempotent and is called
// automatically when the scan ends.
func (sc *Scanner) Close() error {
	if sc.done {
		return nil
	}
	sc.done = true
	if sc.f != nil {
		return sc.f.Close()
	}
	return nil
}
