package control

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/fake"
	"github.com/momentics/hioload-ring/ring"
)

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestInstrumentedAllocator(t *testing.T) {
	m := NewMetrics()
	up := fake.NewAllocator()
	a := m.Instrument(up)

	b1, err := a.Allocate(32)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := a.Allocate(16)
	if err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.BytesInUse); got != 48 {
		t.Errorf("bytes in use = %v", got)
	}
	a.Deallocate(b1)
	if got := testutil.ToFloat64(m.BlocksInUse); got != 1 {
		t.Errorf("blocks in use = %v", got)
	}
	a.Deallocate(b2)

	up.FailAfter(0)
	if _, err := a.Allocate(8); !errors.Is(err, api.ErrOutOfMemory) {
		t.Fatalf("err = %v", err)
	}

	if got := testutil.ToFloat64(m.Allocations); got != 2 {
		t.Errorf("allocations = %v", got)
	}
	if got := testutil.ToFloat64(m.Deallocations); got != 2 {
		t.Errorf("deallocations = %v", got)
	}
	if got := testutil.ToFloat64(m.AllocationFailure); got != 1 {
		t.Errorf("failures = %v", got)
	}
	if got := testutil.ToFloat64(m.BytesInUse); got != 0 {
		t.Errorf("bytes in use = %v", got)
	}
	if a.Stats().Allocs != 2 {
		t.Errorf("forwarded stats = %+v", a.Stats())
	}
	if err := up.Verify(); err != nil {
		t.Error(err)
	}
}

func TestObserveRing(t *testing.T) {
	m := NewMetrics()
	r, err := ring.New[int](4, m.Instrument(fake.NewAllocator()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	r.Write(1)
	r.Write(2)

	m.ObserveRing("q", r.Counter(), r.Cap())
	if got := testutil.ToFloat64(m.RingSize.WithLabelValues("q")); got != 2 {
		t.Errorf("size = %v", got)
	}
	if got := testutil.ToFloat64(m.RingCapacity.WithLabelValues("q")); got != 4 {
		t.Errorf("capacity = %v", got)
	}

	m.ObserveResize("q", r.Resize(6))
	m.ObserveResize("q", r.Resize(1))
	if got := testutil.ToFloat64(m.Resizes.WithLabelValues("q", "ok")); got != 1 {
		t.Errorf("ok resizes = %v", got)
	}
	if got := testutil.ToFloat64(m.Resizes.WithLabelValues("q", "error")); got != 1 {
		t.Errorf("failed resizes = %v", got)
	}
	if got := testutil.ToFloat64(m.BlocksInUse); got != 6 {
		t.Errorf("blocks in use = %v", got)
	}
}
