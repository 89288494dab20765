// Package ordering keeps user-arranged collections densely numbered.
//
// A collection is dense when its positions are exactly 1..N in slice order.
// [InsertAndNormalize] places a new or moved item and renumbers the rest;
// [Normalize] closes the gap left by a removal. Both are pure: the input
// slice and its items are never modified, and items whose position did not
// change are returned as the same value (the same pointer when T is a
// pointer type), so callers can persist only what [Changed] reports.
//
//	acc := ordering.Accessor[*Day, uuid.UUID]{
//	    ID:           func(d *Day) uuid.UUID { return d.ID },
//	    Position:     func(d *Day) (int, bool) { return d.Position, d.Position != 0 },
//	    WithPosition: func(d *Day, p int) *Day { c := *d; c.Position = p; return &c },
//	}
//	next := ordering.InsertAndNormalize(days, moved, acc)
//	for _, d := range ordering.Changed(days, next, acc) {
//	    // UPDATE plan_days SET position = d.Position WHERE id = d.ID
//	}
package ordering
