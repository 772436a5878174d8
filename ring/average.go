// File: ring/average.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import "golang.org/x/exp/constraints"

// Number restricts Average to arithmetic element types.
type Number interface {
	constraints.Integer | constraints.Float
}

// Average returns the arithmetic mean of the held elements, 0 when empty.
func Average[T Number](r *Ring[T]) float64 {
	if r.size == 0 {
		return 0
	}
	var sum float64
	n := r.head
	for i := 0; i < r.size; i++ {
		sum += float64(n.value)
		n = n.next
	}
	return sum / float64(r.size)
}
