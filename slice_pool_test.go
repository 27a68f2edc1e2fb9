package cfr

import (
	"testing"
)

func TestFloatSlicePool_ReusesCapacity(t *testing.T) {
	pool := &floatSlicePool{}
	v := pool.alloc(4)
	if len(v) != 4 {
		t.Fatalf("expected len 4, got %d", len(v))
	}

	v[0] = 42
	pool.free(v)

	w := pool.alloc(4)
	if len(w) != 4 {
		t.Fatalf("expected len 4, got %d", len(w))
	}
	for i, x := range w {
		if x != 0 {
			t.Errorf("index %d not zeroed: %v", i, x)
		}
	}
}

func TestFloatSlicePool_NilIsUsable(t *testing.T) {
	var pool *floatSlicePool
	v := pool.alloc(3)
	if len(v) != 3 {
		t.Fatalf("expected len 3, got %d", len(v))
	}
	pool.free(v)
}

func BenchmarkAllocFree(b *testing.B) {
	pool := &floatSlicePool{}
	for i := 0; i < b.N; i++ {
		v := pool.alloc(10)
		pool.free(v)
	}
}
