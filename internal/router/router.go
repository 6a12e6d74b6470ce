// Package router maps record identifiers to partition ordinals.
package router

import (
	"github.com/spaolacci/murmur3"

	"github.com/palletdb/pallet/internal/errors"
	"github.com/palletdb/pallet/pkg/types"
)

const (
	// warehouseCapacity is the nominal record capacity a warehouse is
	// sized for when deriving the partition count.
	warehouseCapacity = 10000

	// minPartitions and maxPartitions bound the derived partition count.
	minPartitions = 1
	maxPartitions = 20
)

// Router assigns records to partitions by hashing the canonical text form
// of the identifier value. It is pure and stateless: the same value and
// the same partition count always yield the same ordinal.
//
// The partition count is fixed at construction. Reopening a storage root
// with a different target partition size changes the count and makes
// previously written records unreachable; there is no re-sharding.
type Router struct {
	count int
}

// New creates a Router for the given target partition size.
func New(targetPartitionSize int) (*Router, error) {
	if targetPartitionSize <= 0 {
		return nil, errors.NewValidationError(errors.CodeInvalidConfig,
			"target partition size must be positive")
	}
	return &Router{count: CountFor(targetPartitionSize)}, nil
}

// CountFor derives the partition count from the target partition size:
// floor(capacity / size), clamped to [minPartitions, maxPartitions].
// Every enumeration of "all partitions" must use this same derivation.
func CountFor(targetPartitionSize int) int {
	count := warehouseCapacity / targetPartitionSize
	if count < minPartitions {
		return minPartitions
	}
	if count > maxPartitions {
		return maxPartitions
	}
	return count
}

// Count returns the fixed partition count.
func (r *Router) Count() int {
	return r.count
}

// Route returns the partition ordinal for the given identifier value.
func (r *Router) Route(v types.Value) int {
	h := murmur3.Sum64([]byte(v.String()))
	return int(h % uint64(r.count))
}

// RouteKeys routes every key and returns the deduplicated target ordinals
// in ascending order. Keys hashing to the same partition collapse to one
// entry, so a multi-key lookup scans each partition at most once.
func (r *Router) RouteKeys(keys []types.Value) []int {
	seen := make(map[int]struct{}, len(keys))
	for _, k := range keys {
		seen[r.Route(k)] = struct{}{}
	}
	ordinals := make([]int, 0, len(seen))
	for p := 0; p < r.count; p++ {
		if _, ok := seen[p]; ok {
			ordinals = append(ordinals, p)
		}
	}
	return ordinals
}
