// Package permute enumerates orderings of small sets.
package permute

import "iter"

// Permutations yields every ordering of items exactly once, using Heap's
// algorithm. Each yielded slice is a fresh copy the caller may keep; items
// itself is never modified. An empty input yields one empty ordering.
func Permutations[T any](items []T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		work := make([]T, len(items))
		copy(work, items)

		emit := func() bool {
			out := make([]T, len(work))
			copy(out, work)
			return yield(out)
		}

		if !emit() {
			return
		}

		n := len(work)
		c := make([]int, n)
		for i := 1; i < n; {
			if c[i] < i {
				if i%2 == 0 {
					work[0], work[i] = work[i], work[0]
				} else {
					work[c[i]], work[i] = work[i], work[c[i]]
				}
				if !emit() {
					return
				}
				c[i]++
				i = 1
			} else {
				c[i] = 0
				i++
			}
		}
	}
}

// Count returns n!, the number of orderings Permutations yields for n items.
func Count(n int) int {
	total := 1
	for i := 2; i <= n; i++ {
		total *= i
	}
	return total
}
