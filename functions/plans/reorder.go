package plans

import (
	"github.com/google/uuid"

	"github.com/ironlog/ironlog/pkg/ordering"
)

// slot is the ordering view of a day or exercise. A nil pos means the
// caller did not ask for a position.
type slot struct {
	pos *int
	id  uuid.UUID
}

func slotAt(id uuid.UUID, pos int) slot { return slot{id: id, pos: &pos} }

var slotOrder = ordering.Accessor[slot, uuid.UUID]{
	ID: func(s slot) uuid.UUID { return s.id },
	Position: func(s slot) (int, bool) {
		if s.pos == nil {
			return 0, false
		}
		return *s.pos, true
	},
	WithPosition: func(s slot, p int) slot { return slotAt(s.id, p) },
}

// place puts id at the requested position among siblings. It returns the
// final position of id and the siblings whose position must be rewritten;
// id itself is never part of the moves.
func place(siblings []slot, id uuid.UUID, pos *int) (int, []slot) {
	after := ordering.InsertAndNormalize(siblings, slot{id: id, pos: pos}, slotOrder)

	final := 0
	for _, s := range after {
		if s.id == id {
			final = *s.pos
		}
	}

	var moves []slot
	for _, s := range ordering.Changed(siblings, after, slotOrder) {
		if s.id != id {
			moves = append(moves, s)
		}
	}
	return final, moves
}

// closeGap renumbers the siblings left after a removal and returns the ones
// whose position must be rewritten.
func closeGap(siblings []slot) []slot {
	return ordering.Changed(siblings, ordering.Normalize(siblings, slotOrder), slotOrder)
}
