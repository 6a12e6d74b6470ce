package router

import (
	"testing"

	"github.com/palletdb/pallet/pkg/types"
)

func TestCountFor(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{5000, 2},
		{10000, 1},
		{1000, 10},
		{500, 20},
		{100, 20},      // 100 partitions clamped to the max
		{1000000, 1},   // 0 partitions clamped to the min
		{9999, 1},
		{3334, 2},
	}
	for _, tt := range tests {
		if got := CountFor(tt.size); got != tt.want {
			t.Errorf("CountFor(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) should fail", size)
		}
	}
}

func TestRouteInRange(t *testing.T) {
	r, err := New(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 1000; i++ {
		p := r.Route(types.Int(int64(i)))
		if p < 0 || p >= r.Count() {
			t.Fatalf("Route(%d) = %d, outside [0, %d)", i, p, r.Count())
		}
	}
}

func TestRouteDeterministic(t *testing.T) {
	a, _ := New(5000)
	b, _ := New(5000)

	for _, key := range []string{"1", "7", "user-42", "", "a,b\nc"} {
		first := a.Route(types.Text(key))
		for i := 0; i < 10; i++ {
			if got := a.Route(types.Text(key)); got != first {
				t.Fatalf("Route(%q) not stable: %d then %d", key, first, got)
			}
		}
		if got := b.Route(types.Text(key)); got != first {
			t.Fatalf("Route(%q) differs across instances: %d vs %d", key, first, got)
		}
	}
}

func TestRouteKeysDeduplicatesAndSorts(t *testing.T) {
	r, _ := New(5000) // 2 partitions

	keys := []types.Value{
		types.Text("1"), types.Text("2"), types.Text("3"),
		types.Text("1"), types.Text("2"),
	}
	ordinals := r.RouteKeys(keys)

	if len(ordinals) == 0 || len(ordinals) > r.Count() {
		t.Fatalf("got %d ordinals for %d partitions", len(ordinals), r.Count())
	}
	for i := 1; i < len(ordinals); i++ {
		if ordinals[i] <= ordinals[i-1] {
			t.Fatalf("ordinals not strictly ascending: %v", ordinals)
		}
	}
}

func TestIntAndTextKeysRouteIdentically(t *testing.T) {
	r, _ := New(1000)
	for i := int64(0); i < 100; i++ {
		a := r.Route(types.Int(i))
		b := r.Route(types.Text(types.Int(i).String()))
		if a != b {
			t.Fatalf("Int(%d) routed to %d, its text form to %d", i, a, b)
		}
	}
}
