package meta

import (
	"errors"
	"testing"
)

// fakeProber is an in-memory Prober that counts filesystem probes.
type fakeProber struct {
	existing    map[int]bool
	headers     map[int][]string
	headerErr   error
	statCalls   int
	headerCalls int
}

func (f *fakeProber) PartitionExists(ordinal int) bool {
	f.statCalls++
	return f.existing[ordinal]
}

func (f *fakeProber) PartitionHeader(ordinal int) ([]string, error) {
	f.headerCalls++
	if f.headerErr != nil {
		return nil, f.headerErr
	}
	return f.headers[ordinal], nil
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		existing: make(map[int]bool),
		headers:  make(map[int][]string),
	}
}

func TestExistsProbesOnce(t *testing.T) {
	prober := newFakeProber()
	prober.existing[3] = true
	cache := NewCache(prober)

	for i := 0; i < 5; i++ {
		if !cache.Exists(3) {
			t.Fatal("partition 3 should exist")
		}
		if cache.Exists(4) {
			t.Fatal("partition 4 should not exist")
		}
	}
	if prober.statCalls != 2 {
		t.Errorf("expected 2 stat calls (one per ordinal), got %d", prober.statCalls)
	}
}

func TestHeaderReadLazilyAndCached(t *testing.T) {
	prober := newFakeProber()
	prober.existing[0] = true
	prober.headers[0] = []string{"id", "name"}
	cache := NewCache(prober)

	for i := 0; i < 3; i++ {
		header, ok := cache.Header(0)
		if !ok {
			t.Fatal("expected header")
		}
		if len(header) != 2 || header[0] != "id" || header[1] != "name" {
			t.Fatalf("unexpected header %v", header)
		}
	}
	if prober.headerCalls != 1 {
		t.Errorf("expected 1 header read, got %d", prober.headerCalls)
	}
}

func TestHeaderAbsentPartition(t *testing.T) {
	cache := NewCache(newFakeProber())
	if _, ok := cache.Header(7); ok {
		t.Error("absent partition should have no header")
	}
}

func TestHeaderReadFailureIsSoftAndNotCached(t *testing.T) {
	prober := newFakeProber()
	prober.existing[0] = true
	prober.headerErr = errors.New("permission denied")
	cache := NewCache(prober)

	if _, ok := cache.Header(0); ok {
		t.Fatal("unreadable header should report absent")
	}

	// Once the failure clears the next lookup succeeds: the miss was not
	// cached as a negative header.
	prober.headerErr = nil
	prober.headers[0] = []string{"id"}
	if _, ok := cache.Header(0); !ok {
		t.Error("header should be readable after failure clears")
	}
}

func TestRecordWriteTracksCounts(t *testing.T) {
	prober := newFakeProber()
	cache := NewCache(prober)

	cache.RecordWrite(2, []string{"id"}, 1)
	cache.RecordWrite(2, nil, 1)
	if got := cache.RowCount(2); got != 2 {
		t.Errorf("RowCount = %d, want 2", got)
	}
	if !cache.Exists(2) {
		t.Error("written partition should exist in cache without probing")
	}
	if prober.statCalls != 0 {
		t.Errorf("RecordWrite should prevent probes, got %d", prober.statCalls)
	}

	header, ok := cache.Header(2)
	if !ok || len(header) != 1 || header[0] != "id" {
		t.Errorf("expected cached header [id], got %v ok=%v", header, ok)
	}

	// Deltas clamp at zero.
	cache.RecordWrite(2, nil, -10)
	if got := cache.RowCount(2); got != 0 {
		t.Errorf("RowCount after clamp = %d, want 0", got)
	}
}

func TestDropClearsEntry(t *testing.T) {
	prober := newFakeProber()
	cache := NewCache(prober)

	cache.RecordWrite(1, []string{"id"}, 5)
	cache.Drop(1)

	if cache.Exists(1) {
		t.Error("dropped partition should read as absent")
	}
	if _, ok := cache.Header(1); ok {
		t.Error("dropped partition should have no header")
	}
	if got := cache.RowCount(1); got != 0 {
		t.Errorf("RowCount after drop = %d, want 0", got)
	}
	// The absence itself is cached.
	if prober.statCalls != 0 {
		t.Errorf("Drop should cache the absence, got %d probes", prober.statCalls)
	}
}

func TestStatsListsExistingPartitions(t *testing.T) {
	cache := NewCache(newFakeProber())
	cache.RecordWrite(0, []string{"id"}, 3)
	cache.RecordWrite(4, []string{"id"}, 1)
	cache.Drop(4)

	stats := cache.Stats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 existing partition, got %v", stats)
	}
	if stats[0] != 3 {
		t.Errorf("partition 0 rows = %d, want 3", stats[0])
	}
}

func TestHeaderCopyIsSafe(t *testing.T) {
	prober := newFakeProber()
	prober.existing[0] = true
	prober.headers[0] = []string{"id", "name"}
	cache := NewCache(prober)

	header, _ := cache.Header(0)
	header[0] = "mutated"

	fresh, _ := cache.Header(0)
	if fresh[0] != "id" {
		t.Error("caller mutation leaked into cached header")
	}
}
