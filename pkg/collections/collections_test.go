package collections_test

import (
	"testing"

	"github.com/alkime/scribe/pkg/collections"

	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Run("basic types", func(t *testing.T) {
		ints := []int{1, 2, 3, 4}
		squared := collections.Apply(ints, func(i int) int {
			return i * i
		})

		require.Equal(t, []int{1, 4, 9, 16}, squared)

		strs := []string{"a", "bb", "ccc"}
		lengths := collections.Apply(strs, func(s string) int {
			return len(s)
		})

		require.Equal(t, []int{1, 2, 3}, lengths)
	})

	t.Run("empty", func(t *testing.T) {
		require.Empty(t, collections.Apply([]int{}, func(i int) string { return "" }))
	})
}

func TestSortedByValueDesc(t *testing.T) {
	t.Run("orders by value then key", func(t *testing.T) {
		probs := map[string]float64{
			"Hindi":   0.1,
			"Marathi": 0.8,
			"Tamil":   0.05,
			"Bengali": 0.05,
		}

		entries := collections.SortedByValueDesc(probs)

		keys := collections.Apply(entries, func(e collections.Entry[string, float64]) string {
			return e.Key
		})
		require.Equal(t, []string{"Marathi", "Hindi", "Bengali", "Tamil"}, keys)
		require.InDelta(t, 0.8, entries[0].Value, 1e-9)
	})

	t.Run("nil map", func(t *testing.T) {
		require.Empty(t, collections.SortedByValueDesc[string, float64](nil))
	})
}
