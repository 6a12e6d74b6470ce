package pallet

import (
	palleterrors "github.com/palletdb/pallet/internal/errors"
	"github.com/palletdb/pallet/internal/meta"
	"github.com/palletdb/pallet/internal/router"
	"github.com/palletdb/pallet/internal/store"
	"github.com/palletdb/pallet/pkg/types"
)

// Partitioned is the hash-partitioned warehouse. Records are routed to
// one of a fixed set of partition files by hashing the identifier column;
// the partition count is derived from the target partition size at
// construction and must not change for a given storage root, or
// previously written records become unreachable.
//
// A Partitioned instance owns a private in-memory metadata cache and is
// not safe for concurrent use.
type Partitioned struct {
	opts   options
	router *router.Router
	cache  *meta.Cache
	store  *store.Store
}

var _ Warehouse = (*Partitioned)(nil)

// New creates a partitioned warehouse over the given storage root. The
// target partition size drives the partition count; the storage root
// directory is created on first write.
func New(targetPartitionSize int, storageRoot string, opts ...Option) (*Partitioned, error) {
	if storageRoot == "" {
		return nil, palleterrors.NewValidationError(palleterrors.CodeInvalidConfig,
			"storage root must not be empty")
	}

	r, err := router.New(targetPartitionSize)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	layout := store.NewLayout(storageRoot)
	cache := meta.NewCache(layout)

	return &Partitioned{
		opts:   o,
		router: r,
		cache:  cache,
		store:  store.New(layout, cache, o.logger),
	}, nil
}

// PartitionCount returns the fixed number of partition slots.
func (w *Partitioned) PartitionCount() int {
	return w.router.Count()
}

// Insert adds one record, routed by its identifier column. A record
// without the identifier is silently dropped.
func (w *Partitioned) Insert(rec types.Record) error {
	id, ok := rec.Get(w.opts.idColumn)
	if !ok || id.IsNull() {
		w.opts.logger.Debug("insert dropped: record has no identifier",
			"column", w.opts.idColumn)
		return nil
	}

	ordinal := w.router.Route(id)
	return w.store.Append(ordinal, rec)
}

// Update merges patch into the first record whose matchColumn equals
// matchValue. Partitions are walked in ascending ordinal order; each is
// streamed first to test for a match and only reloaded in full when one
// is found. The walk stops at the first partition that updated.
func (w *Partitioned) Update(matchColumn string, matchValue types.Value, patch types.Record) error {
	key := matchValue.String()

	for ordinal := 0; ordinal < w.router.Count(); ordinal++ {
		if !w.store.Exists(ordinal) {
			continue
		}

		found, err := w.scanForMatch(ordinal, matchColumn, key)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		records, err := w.store.ReadAll(ordinal)
		if err != nil {
			if w.opts.strictIO {
				return err
			}
			w.opts.logger.Debug("update skipped unreadable partition",
				"partition", ordinal, "error", err)
			continue
		}

		updated := false
		for i := range records {
			if v, ok := records[i].Get(matchColumn); ok && v.String() == key {
				merged := records[i].Clone()
				for _, col := range patch.Columns() {
					pv, _ := patch.Get(col)
					merged.Set(col, pv)
				}
				records[i] = merged
				updated = true
				break
			}
		}
		if !updated {
			continue
		}

		if err := w.store.RewriteAll(ordinal, records); err != nil {
			return err
		}
		return nil
	}
	return nil
}

// Delete removes every record whose matchColumn equals matchValue, across
// all partitions. A partition is only rewritten when its row count
// actually changed; a partition left empty has its file removed.
func (w *Partitioned) Delete(matchColumn string, matchValue types.Value) error {
	key := matchValue.String()

	for ordinal := 0; ordinal < w.router.Count(); ordinal++ {
		if !w.store.Exists(ordinal) {
			continue
		}

		found, err := w.scanForMatch(ordinal, matchColumn, key)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		records, err := w.store.ReadAll(ordinal)
		if err != nil {
			if w.opts.strictIO {
				return err
			}
			w.opts.logger.Debug("delete skipped unreadable partition",
				"partition", ordinal, "error", err)
			continue
		}

		kept := records[:0:0]
		for _, rec := range records {
			if v, ok := rec.Get(matchColumn); ok && v.String() == key {
				continue
			}
			kept = append(kept, rec)
		}
		if len(kept) == len(records) {
			continue
		}

		if err := w.store.RewriteAll(ordinal, kept); err != nil {
			return err
		}
	}
	return nil
}

// Query returns all records whose matchColumn equals any of the keys.
// When matchColumn is the identifier column, only the partitions the keys
// hash to are scanned; otherwise every existing partition is. Results
// arrive in partition-then-stream order, with no ordering guarantee
// beyond that.
func (w *Partitioned) Query(matchColumn string, keys []types.Value) ([]types.Record, error) {
	results := []types.Record{}
	if len(keys) == 0 {
		return results, nil
	}

	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k.String()] = struct{}{}
	}

	var ordinals []int
	if matchColumn == w.opts.idColumn {
		ordinals = w.router.RouteKeys(keys)
	} else {
		for ordinal := 0; ordinal < w.router.Count(); ordinal++ {
			if w.store.Exists(ordinal) {
				ordinals = append(ordinals, ordinal)
			}
		}
	}

	for _, ordinal := range ordinals {
		if !w.store.Exists(ordinal) {
			continue
		}

		sc := w.store.Scan(ordinal)
		for sc.Next() {
			rec := sc.Record()
			if v, ok := rec.Get(matchColumn); ok {
				if _, hit := keySet[v.String()]; hit {
					results = append(results, rec)
				}
			}
		}
		sc.Close()
		if err := sc.Err(); err != nil {
			if w.opts.strictIO {
				return nil, err
			}
			w.opts.logger.Debug("query ended partition scan early",
				"partition", ordinal, "error", err)
		}
	}
	return results, nil
}

// PartitionStat describes one existing partition.
type PartitionStat struct {
	// Ordinal is the partition's index in [0, PartitionCount).
	Ordinal int

	// Rows is the approximate row count from the metadata cache.
	Rows int64
}

// Stats returns the approximate row count of every existing partition in
// ascending ordinal order. Counts come from the in-memory metadata cache
// and are maintained incrementally, not re-derived from the files.
func (w *Partitioned) Stats() []PartitionStat {
	var stats []PartitionStat
	for ordinal := 0; ordinal < w.router.Count(); ordinal++ {
		if !w.store.Exists(ordinal) {
			continue
		}
		stats = append(stats, PartitionStat{
			Ordinal: ordinal,
			Rows:    w.cache.RowCount(ordinal),
		})
	}
	return stats
}

// scanForMatch streams the partition and reports whether any record's
// matchColumn equals key. In compatibility mode a failed scan reads as
// "no match"; strict mode surfaces the error.
func (w *Partitioned) scanForMatch(ordinal int, matchColumn, key string) (bool, error) {
	sc := w.store.Scan(ordinal)
	defer sc.Close()

	for sc.Next() {
		if v, ok := sc.Record().Get(matchColumn); ok && v.String() == key {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		if w.opts.strictIO {
			return false, err
		}
		w.opts.logger.Debug("match scan ended early",
			"partition", ordinal, "error", err)
	}
	return false, nil
}
