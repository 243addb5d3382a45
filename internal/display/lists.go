package display

import (
	"sort"

	"github.com/samber/lo"
)

// Group is one bucket produced by GroupBy.
type Group[K comparable, V any] struct {
	Key   K   `json:"key"`
	Items []V `json:"items"`
}

// GroupBy buckets list by key. Groups come out in first-seen key order and
// items keep their input order inside each group.
func GroupBy[K comparable, V any](list []V, keyFn func(V) K) []Group[K, V] {
	buckets := lo.GroupBy(list, keyFn)
	keys := lo.Uniq(lo.Map(list, func(v V, _ int) K { return keyFn(v) }))

	return lo.Map(keys, func(k K, _ int) Group[K, V] {
		return Group[K, V]{Key: k, Items: buckets[k]}
	})
}

// FilterBy returns the items matching pred in input order. A nil list yields an empty slice.
func FilterBy[V any](list []V, pred func(V) bool) []V {
	out := lo.Filter(list, func(v V, _ int) bool { return pred(v) })
	if out == nil {
		return []V{}
	}
	return out
}

// SortBy returns a sorted copy; equal items keep their order.
func SortBy[V any](list []V, less func(a, b V) bool) []V {
	out := make([]V, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// InDepartment filters items to one department; departmentID 0 keeps everything.
func InDepartment[V any](list []V, departmentID int64, deptOf func(V) int64) []V {
	if departmentID == 0 {
		return FilterBy(list, func(V) bool { return true })
	}
	return FilterBy(list, func(v V) bool { return deptOf(v) == departmentID })
}

// CountBy counts items per key, for summary chips like "3 pending".
func CountBy[K comparable, V any](list []V, keyFn func(V) K) map[K]int {
	return lo.CountValuesBy(list, keyFn)
}
