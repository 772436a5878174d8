package pool_test

import (
	"sync"
	"testing"

	"github.com/momentics/hioload-ring/fake"
	"github.com/momentics/hioload-ring/pool"
)

func TestSlabReuse(t *testing.T) {
	up := fake.NewAllocator()
	s := pool.NewSlabAllocator(up, 4)

	b1, err := s.Allocate(40)
	if err != nil {
		t.Fatal(err)
	}
	if len(b1) != 64 {
		t.Fatalf("len = %d, want class size 64", len(b1))
	}
	s.Deallocate(b1)
	b2, err := s.Allocate(50)
	if err != nil {
		t.Fatal(err)
	}
	if &b2[0] != &b1[0] {
		t.Error("expected the freed block to be reused")
	}
	if up.Allocs() != 1 {
		t.Errorf("upstream allocs = %d, want 1", up.Allocs())
	}
	st := s.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.BlocksInUse != 1 {
		t.Errorf("stats = %+v", st)
	}
	s.Deallocate(b2)
	if n := s.Drain(); n != 1 {
		t.Errorf("Drain = %d, want 1", n)
	}
	if err := up.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestSlabClassesAreSeparate(t *testing.T) {
	up := fake.NewAllocator()
	s := pool.NewSlabAllocator(up, 4)
	small, _ := s.Allocate(1)
	big, _ := s.Allocate(1000)
	if len(small) != 16 || len(big) != 1024 {
		t.Fatalf("class sizes %d, %d", len(small), len(big))
	}
	s.Deallocate(small)
	b, _ := s.Allocate(900)
	if &b[0] == &small[0] {
		t.Fatal("block reused across classes")
	}
	s.Deallocate(b)
	s.Deallocate(big)
	s.Drain()
	if err := up.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestSlabOverflowGoesUpstream(t *testing.T) {
	up := fake.NewAllocator()
	s := pool.NewSlabAllocator(up, 2)
	var blocks [][]byte
	for i := 0; i < 5; i++ {
		b, err := s.Allocate(16)
		if err != nil {
			t.Fatal(err)
		}
		blocks = append(blocks, b)
	}
	for _, b := range blocks {
		s.Deallocate(b)
	}
	if got := s.Stats().Cached; got != 2 {
		t.Fatalf("Cached = %d, want 2", got)
	}
	if up.Outstanding() != 2 {
		t.Fatalf("upstream outstanding = %d, want 2", up.Outstanding())
	}
	s.Drain()
	if err := up.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestSlabUpstreamFailure(t *testing.T) {
	up := fake.NewAllocator()
	up.FailAfter(0)
	s := pool.NewSlabAllocator(up, 0)
	if _, err := s.Allocate(8); err == nil {
		t.Fatal("expected upstream failure to propagate")
	}
	if s.Stats().Failures != 1 {
		t.Errorf("Failures = %d", s.Stats().Failures)
	}
}

func TestSlabConcurrent(t *testing.T) {
	up := fake.NewAllocator()
	s := pool.NewSlabAllocator(up, 64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				b, err := s.Allocate(24 + i%100)
				if err != nil {
					t.Error(err)
					return
				}
				s.Deallocate(b)
			}
		}()
	}
	wg.Wait()
	if st := s.Stats(); st.BlocksInUse != 0 || st.BytesInUse != 0 {
		t.Fatalf("stats = %+v", st)
	}
	s.Drain()
	if err := up.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultIsShared(t *testing.T) {
	if pool.Default() != pool.Default() {
		t.Fatal("Default returned different allocators")
	}
	b, err := pool.Default().Allocate(32)
	if err != nil {
		t.Fatal(err)
	}
	pool.Default().Deallocate(b)
}
