// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus metrics for allocators and rings.

package control

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-ring/api"
)

const namespace = "hioload_ring"

// Metrics groups every collector the library exports.
type Metrics struct {
	Allocations       prometheus.Counter
	Deallocations     prometheus.Counter
	AllocationFailure prometheus.Counter
	BytesInUse        prometheus.Gauge
	BlocksInUse       prometheus.Gauge
	RingSize          *prometheus.GaugeVec
	RingCapacity      *prometheus.GaugeVec
	Resizes           *prometheus.CounterVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Successful allocator Allocate calls",
		}),
		Deallocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deallocations_total",
			Help:      "Allocator Deallocate calls",
		}),
		AllocationFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_failures_total",
			Help:      "Allocate calls that returned an error",
		}),
		BytesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocated_bytes",
			Help:      "Bytes handed out and not yet returned",
		}),
		BlocksInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocated_blocks",
			Help:      "Blocks handed out and not yet returned",
		}),
		RingSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "size",
			Help:      "Unread elements per ring",
		}, []string{"ring"}),
		RingCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capacity",
			Help:      "Slots per ring",
		}, []string{"ring"}),
		Resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resizes_total",
			Help:      "Resize calls by result",
		}, []string{"ring", "result"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.Allocations, m.Deallocations, m.AllocationFailure,
		m.BytesInUse, m.BlocksInUse,
		m.RingSize, m.RingCapacity, m.Resizes,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRing publishes the current size and capacity of a ring.
func (m *Metrics) ObserveRing(name string, size, capacity int) {
	m.RingSize.WithLabelValues(name).Set(float64(size))
	m.RingCapacity.WithLabelValues(name).Set(float64(capacity))
}

// ObserveResize counts a resize outcome.
func (m *Metrics) ObserveResize(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Resizes.WithLabelValues(name, result).Inc()
}

// Instrument wraps next so that every call is reflected in m.
func (m *Metrics) Instrument(next api.Allocator) *InstrumentedAllocator {
	return &InstrumentedAllocator{next: next, m: m}
}

// InstrumentedAllocator is an api.Allocator that feeds Metrics.
type InstrumentedAllocator struct {
	next api.Allocator
	m    *Metrics
}

func (a *InstrumentedAllocator) Allocate(size int) ([]byte, error) {
	b, err := a.next.Allocate(size)
	if err != nil {
		a.m.AllocationFailure.Inc()
		return nil, err
	}
	a.m.Allocations.Inc()
	a.m.BlocksInUse.Inc()
	a.m.BytesInUse.Add(float64(len(b)))
	return b, nil
}

func (a *InstrumentedAllocator) Deallocate(b []byte) {
	a.m.Deallocations.Inc()
	a.m.BlocksInUse.Dec()
	a.m.BytesInUse.Sub(float64(len(b)))
	a.next.Deallocate(b)
}

// Stats forwards to the wrapped allocator when it keeps accounting.
func (a *InstrumentedAllocator) Stats() api.AllocatorStats {
	if sp, ok := a.next.(api.StatsProvider); ok {
		return sp.Stats()
	}
	return api.AllocatorStats{}
}

var (
	_ api.Allocator     = (*InstrumentedAllocator)(nil)
	_ api.StatsProvider = (*InstrumentedAllocator)(nil)
)
