// Package pallet is a minimal key-addressable record store. Records are
// persisted as header-first CSV files and split across a fixed set of
// partitions by hashing a designated identifier column ("id" by default).
//
// Two implementations of the Warehouse contract are provided: Partitioned,
// the hash-partitioned engine, and Naive, an unpartitioned single-file
// baseline kept for comparison.
//
// The store assumes a single writer in a single process. There is no
// locking, no multi-row atomicity, and no crash consistency: a process
// killed mid-rewrite can leave a partition truncated. Schema drift is not
// detected either; a record written with columns that differ from a
// partition's established header is silently aligned to that header,
// dropping unknown columns and blanking missing ones.
package pallet

import "github.com/palletdb/pallet/pkg/types"

// DefaultIdentifierColumn is the column used for partition routing unless
// overridden with WithIdentifierColumn.
const DefaultIdentifierColumn = "id"

// Warehouse is the record store contract shared by the partitioned engine
// and the naive single-file baseline.
type Warehouse interface {
	// Insert adds one record. A record without the identifier column is
	// silently dropped; this is a data-quality contract, not an error.
	Insert(rec types.Record) error

	// Update merges patch into the FIRST record whose matchColumn equals
	// matchValue, in partition-then-stream order. At most one record,
	// system-wide, changes per call.
	Update(matchColumn string, matchValue types.Value, patch types.Record) error

	// Delete removes EVERY record whose matchColumn equals matchValue.
	// The asymmetry with Update's first-match semantics is deliberate.
	Delete(matchColumn string, matchValue types.Value) error

	// Query returns all records whose matchColumn equals any of the
	// keys, concatenated in partition-then-stream order. Empty keys
	// yield an empty result without touching storage.
	Query(matchColumn string, keys []types.Value) ([]types.Record, error)
}
