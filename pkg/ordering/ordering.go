package ordering

import "slices"

// Accessor tells the normalizer how to read and rewrite an item.
type Accessor[T any, K comparable] struct {
	// ID returns the item's stable identifier.
	ID func(T) K
	// Position returns the stored position and whether one is set.
	Position func(T) (int, bool)
	// WithPosition returns a copy of the item with position p.
	// It must not modify its argument.
	WithPosition func(T, int) T
}

// InsertAndNormalize places upsert into items and renumbers the result 1..N.
//
// An item in items with the same ID as upsert is removed first, so moving
// and editing in place are both a re-insert. The target slot comes from
// upsert's position: unset appends, p <= 0 prepends, otherwise index p-1
// clamped to the end of the list. The upserted item is always rewritten;
// other items are rewritten only when their position changes.
func InsertAndNormalize[T any, K comparable](items []T, upsert T, acc Accessor[T, K]) []T {
	id := acc.ID(upsert)
	out := make([]T, 0, len(items)+1)
	for _, it := range items {
		if acc.ID(it) != id {
			out = append(out, it)
		}
	}

	slot := len(out)
	if p, ok := acc.Position(upsert); ok {
		// Compare before subtracting: p-1 wraps for math.MinInt.
		if p <= 0 {
			slot = 0
		} else {
			slot = min(p-1, len(out))
		}
	}
	out = slices.Insert(out, slot, upsert)

	renumber(out, slot, acc)
	return out
}

// Normalize renumbers items 1..N in slice order. It is the removal path:
// callers pass the list with the removed item already dropped.
func Normalize[T any, K comparable](items []T, acc Accessor[T, K]) []T {
	out := slices.Clone(items)
	renumber(out, -1, acc)
	return out
}

// renumber rewrites every item whose position disagrees with its index, and
// the item at force unconditionally.
func renumber[T any, K comparable](items []T, force int, acc Accessor[T, K]) {
	for i, it := range items {
		want := i + 1
		if p, ok := acc.Position(it); i != force && ok && p == want {
			continue
		}
		items[i] = acc.WithPosition(it, want)
	}
}

// Changed returns the items of after whose position differs from the one
// stored for the same ID in before, plus items not present in before.
func Changed[T any, K comparable](before, after []T, acc Accessor[T, K]) []T {
	prev := make(map[K]int, len(before))
	for _, it := range before {
		if p, ok := acc.Position(it); ok {
			prev[acc.ID(it)] = p
		}
	}

	var changed []T
	for _, it := range after {
		p, _ := acc.Position(it)
		if old, ok := prev[acc.ID(it)]; ok && old == p {
			continue
		}
		changed = append(changed, it)
	}
	return changed
}

// IsDense reports whether items are numbered exactly 1..N in slice order.
func IsDense[T any, K comparable](items []T, acc Accessor[T, K]) bool {
	for i, it := range items {
		if p, ok := acc.Position(it); !ok || p != i+1 {
			return false
		}
	}
	return true
}
