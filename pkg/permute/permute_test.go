package permute

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermutations_Unique(t *testing.T) {
	for n := 0; n <= 6; n++ {
		items := make([]int64, n)
		for i := range items {
			items[i] = int64(i + 5)
		}

		seen := make(map[string]bool)
		for p := range Permutations(items) {
			require.Len(t, p, n)
			key := fmt.Sprint(p)
			assert.False(t, seen[key], "duplicate ordering %v", p)
			seen[key] = true
		}
		assert.Equal(t, Count(n), len(seen), "n=%d", n)
	}
}

func TestPermutations_FiveSettings(t *testing.T) {
	count := 0
	for p := range Permutations([]int64{0, 1, 2, 3, 4}) {
		assert.ElementsMatch(t, []int64{0, 1, 2, 3, 4}, p)
		count++
	}
	assert.Equal(t, 120, count)
}

func TestPermutations_EmptyYieldsOnce(t *testing.T) {
	count := 0
	for p := range Permutations([]string{}) {
		assert.Empty(t, p)
		count++
	}
	assert.Equal(t, 1, count)
}

func TestPermutations_InputUntouched(t *testing.T) {
	items := []int64{9, 8, 7, 6}
	for p := range Permutations(items) {
		p[0] = -1
	}
	assert.Equal(t, []int64{9, 8, 7, 6}, items)
}

func TestPermutations_CopiesAreIndependent(t *testing.T) {
	var all [][]int
	for p := range Permutations([]int{1, 2, 3}) {
		all = append(all, p)
	}
	require.Len(t, all, 6)
	assert.Equal(t, []int{1, 2, 3}, all[0])
	assert.NotEqual(t, all[0], all[1])
}

func TestPermutations_EarlyBreak(t *testing.T) {
	count := 0
	for range Permutations([]int{1, 2, 3, 4, 5}) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 1, Count(0))
	assert.Equal(t, 1, Count(1))
	assert.Equal(t, 120, Count(5))
	assert.Equal(t, 720, Count(6))
}
