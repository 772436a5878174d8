// Package ring
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity, overwrite-on-full circular queue over a cycle of
// pre-allocated nodes. Every node is charged to an injected api.Allocator:
// construction and growth allocate, shrink and Close deallocate, and a failed
// construction or growth returns everything it took before reporting
// api.ErrOutOfMemory.
//
// A Ring has a single owner and no internal locking. Move and MoveFrom
// transfer the whole node cycle and leave the source released; Close on a
// released ring is a no-op.
//
//	r, err := ring.New[float64](64, pool.Default())
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	r.Write(1.5)
//	avg := ring.Average(r)
package ring
