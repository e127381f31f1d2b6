package collections

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

// Apply applies the applicator function to each item in the input slice.
func Apply[T, V any](items []T, applicator func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = applicator(item)
	}
	return result
}

// Entry is a single key/value pair of a map.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// SortedByValueDesc returns the map entries ordered by descending value.
// Ties are broken by ascending key so the order is deterministic.
func SortedByValueDesc[K constraints.Ordered, V constraints.Integer | constraints.Float](m map[K]V) []Entry[K, V] {
	entries := make([]Entry[K, V], 0, len(m))
	for k, v := range m {
		entries = append(entries, Entry[K, V]{Key: k, Value: v})
	}

	slices.SortFunc(entries, func(a, b Entry[K, V]) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	return entries
}
