package control

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/pool"
	"github.com/momentics/hioload-ring/ring"
)

func TestBuildAllocatorHeap(t *testing.T) {
	chain, err := BuildAllocator(DefaultConfig().Allocator, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer chain.Close()
	if _, ok := chain.Allocator.(*pool.HeapAllocator); !ok {
		t.Fatalf("base = %T, want *pool.HeapAllocator", chain.Allocator)
	}
}

func TestBuildAllocatorUnknownKind(t *testing.T) {
	_, err := BuildAllocator(AllocatorConfig{Kind: "numa"}, nil)
	if !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildAllocatorChain(t *testing.T) {
	cfg := AllocatorConfig{Kind: AllocatorHeap, Slab: true, SlabDepth: 8, LimitBytes: 1 << 20}
	m := NewMetrics()
	chain, err := BuildAllocator(cfg, m)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := chain.Allocator.(*InstrumentedAllocator); !ok {
		t.Fatalf("outer = %T, want *InstrumentedAllocator", chain.Allocator)
	}

	r, err := ring.New[int64](5, chain)
	if err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 7; i++ {
		r.Write(i)
	}
	if st := chain.Stats(); st.BlocksInUse != 5 {
		t.Errorf("blocks in use = %d, want 5", st.BlocksInUse)
	}
	if err := r.Resize(3); err != nil {
		t.Fatal(err)
	}
	r.Close()

	st := chain.Stats()
	if st.BlocksInUse != 0 || st.BytesInUse != 0 {
		t.Errorf("leak after close: %+v", st)
	}
	if st.Allocs != st.Frees {
		t.Errorf("allocs %d != frees %d", st.Allocs, st.Frees)
	}
	chain.Close()
}

func TestBuildAllocatorBudget(t *testing.T) {
	chain, err := BuildAllocator(AllocatorConfig{Kind: AllocatorHeap, LimitBytes: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer chain.Close()
	if _, err := ring.New[int](3, chain); !errors.Is(err, api.ErrOutOfMemory) {
		t.Fatalf("err = %v, want out of memory", err)
	}
}

func TestBuildAllocatorPage(t *testing.T) {
	chain, err := BuildAllocator(AllocatorConfig{Kind: AllocatorPage, Slab: true, SlabDepth: 4}, nil)
	if errors.Is(err, api.ErrNotSupported) {
		t.Skip("page allocator not supported on this platform")
	}
	if err != nil {
		t.Fatal(err)
	}
	r, err := ring.New[string](4, chain)
	if err != nil {
		t.Fatal(err)
	}
	r.Write("a")
	if got := r.Read(); got != "a" {
		t.Errorf("read %q", got)
	}
	r.Close()
	chain.Close()
	if st := chain.pages.Stats(); st.BlocksInUse != 0 {
		t.Errorf("pages still mapped: %+v", st)
	}
}
