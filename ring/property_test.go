package ring

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/momentics/hioload-ring/fake"
)

// checkCycle verifies the structural invariants against the expected
// contents, oldest first.
func checkCycle(t *testing.T, r *Ring[int], want []int) {
	t.Helper()
	if r.size < 0 || r.size > r.capacity || r.capacity < MinCapacity {
		t.Fatalf("size=%d capacity=%d", r.size, r.capacity)
	}
	n := r.head
	for i := 1; i <= r.capacity; i++ {
		n = n.next
		if n == r.head && i != r.capacity {
			t.Fatalf("cycle closes after %d nodes, capacity %d", i, r.capacity)
		}
	}
	if n != r.head {
		t.Fatalf("cycle of capacity %d does not return to head", r.capacity)
	}
	if r.size != len(want) {
		t.Fatalf("size=%d, model has %d", r.size, len(want))
	}
	n = r.head
	for i := 0; i < r.size; i++ {
		if n.value != want[i] {
			t.Fatalf("element %d = %d, want %d (model %v)", i, n.value, want[i], want)
		}
		n = n.next
	}
	if n != r.tail {
		t.Fatal("walking size nodes from head does not reach tail")
	}
}

func TestRingMatchesModel(t *testing.T) {
	for _, policy := range []ShrinkPolicy{ShrinkDropOldest, ShrinkDropNewest, ShrinkReject} {
		for seed := int64(1); seed <= 5; seed++ {
			t.Run(fmt.Sprintf("%s/seed%d", policy, seed), func(t *testing.T) {
				runModel(t, policy, rand.New(rand.NewSource(seed)))
			})
		}
	}
}

func runModel(t *testing.T, policy ShrinkPolicy, rng *rand.Rand) {
	a := fake.NewAllocator()
	r, err := New[int](MinCapacity+rng.Intn(6), a, WithShrinkPolicy(policy))
	if err != nil {
		t.Fatal(err)
	}
	var model []int
	next := 0

	for step := 0; step < 3000; step++ {
		switch op := rng.Intn(10); {
		case op < 5:
			r.Write(next)
			model = append(model, next)
			if len(model) > r.capacity {
				model = model[1:]
			}
			next++
		case op < 8:
			v, ok := r.TryRead()
			if ok != (len(model) > 0) {
				t.Fatalf("step %d: TryRead ok=%v with model %v", step, ok, model)
			}
			if ok {
				if v != model[0] {
					t.Fatalf("step %d: read %d, want %d", step, v, model[0])
				}
				model = model[1:]
			}
		case op < 9:
			newCap := MinCapacity + rng.Intn(10)
			if rng.Intn(20) == 0 {
				a.FailAfter(rng.Intn(3))
			}
			err := r.Resize(newCap)
			a.FailNever()
			switch {
			case err != nil && newCap > r.capacity:
				// failed growth leaves everything as it was
			case err != nil:
				if policy != ShrinkReject || len(model) <= newCap {
					t.Fatalf("step %d: Resize(%d): %v", step, newCap, err)
				}
			case len(model) > newCap && policy == ShrinkDropNewest:
				model = model[:newCap]
			case len(model) > newCap:
				model = model[len(model)-newCap:]
			}
			if err == nil && r.capacity != newCap {
				t.Fatalf("step %d: capacity %d after Resize(%d)", step, r.capacity, newCap)
			}
		default:
			r.Empty()
			model = model[:0]
		}
		checkCycle(t, r, model)
		if a.Outstanding() != r.capacity {
			t.Fatalf("step %d: %d blocks live for capacity %d", step, a.Outstanding(), r.capacity)
		}
	}

	r.Close()
	if err := a.Verify(); err != nil {
		t.Fatal(err)
	}
}
