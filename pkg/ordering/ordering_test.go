package ordering_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironlog/ironlog/pkg/ordering"
)

type item struct {
	pos *int
	id  int
}

func at(id, pos int) *item { return &item{id: id, pos: &pos} }

func unset(id int) *item { return &item{id: id} }

var acc = ordering.Accessor[*item, int]{
	ID: func(it *item) int { return it.id },
	Position: func(it *item) (int, bool) {
		if it.pos == nil {
			return 0, false
		}
		return *it.pos, true
	},
	WithPosition: func(it *item, p int) *item {
		return &item{id: it.id, pos: &p}
	},
}

type pair struct{ id, pos int }

func flatten(items []*item) []pair {
	out := make([]pair, len(items))
	for i, it := range items {
		out[i] = pair{id: it.id}
		if it.pos != nil {
			out[i].pos = *it.pos
		}
	}
	return out
}

func TestInsertAndNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		items  []*item
		upsert *item
		want   []pair
	}{
		{
			name:   "append when position unset",
			items:  []*item{at(1, 1), at(2, 2)},
			upsert: unset(3),
			want:   []pair{{1, 1}, {2, 2}, {3, 3}},
		},
		{
			name:   "zero prepends",
			items:  []*item{at(1, 1), at(2, 2)},
			upsert: at(3, 0),
			want:   []pair{{3, 1}, {1, 2}, {2, 3}},
		},
		{
			name:   "negative prepends",
			items:  []*item{at(1, 1), at(2, 2)},
			upsert: at(3, -4),
			want:   []pair{{3, 1}, {1, 2}, {2, 3}},
		},
		{
			name:   "minimum int prepends",
			items:  []*item{at(1, 1), at(2, 2)},
			upsert: at(9, math.MinInt),
			want:   []pair{{9, 1}, {1, 2}, {2, 3}},
		},
		{
			name:   "maximum int clamps to end",
			items:  []*item{at(1, 1), at(2, 2)},
			upsert: at(9, math.MaxInt),
			want:   []pair{{1, 1}, {2, 2}, {9, 3}},
		},
		{
			name:   "middle insert shifts later items",
			items:  []*item{at(1, 1), at(2, 2), at(3, 3)},
			upsert: at(4, 2),
			want:   []pair{{1, 1}, {4, 2}, {2, 3}, {3, 4}},
		},
		{
			name:   "large position clamps to end",
			items:  []*item{at(1, 1), at(2, 2)},
			upsert: at(3, 99),
			want:   []pair{{1, 1}, {2, 2}, {3, 3}},
		},
		{
			name:   "move down",
			items:  []*item{at(1, 1), at(2, 2), at(3, 3)},
			upsert: at(1, 3),
			want:   []pair{{2, 1}, {3, 2}, {1, 3}},
		},
		{
			name:   "move up",
			items:  []*item{at(1, 1), at(2, 2), at(3, 3)},
			upsert: at(3, 1),
			want:   []pair{{3, 1}, {1, 2}, {2, 3}},
		},
		{
			name:   "edit in place without position moves to end",
			items:  []*item{at(1, 1), at(2, 2), at(3, 3)},
			upsert: unset(1),
			want:   []pair{{2, 1}, {3, 2}, {1, 3}},
		},
		{
			name:   "empty list",
			items:  nil,
			upsert: at(1, 5),
			want:   []pair{{1, 1}},
		},
		{
			name:   "repairs an already gapped list",
			items:  []*item{at(1, 2), at(2, 7)},
			upsert: unset(3),
			want:   []pair{{1, 1}, {2, 2}, {3, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			before := flatten(tt.items)

			got := ordering.InsertAndNormalize(tt.items, tt.upsert, acc)

			require.Equal(t, tt.want, flatten(got))
			require.True(t, ordering.IsDense(got, acc))
			require.Equal(t, before, flatten(tt.items), "input must not be modified")
		})
	}
}

func TestInsertAndNormalizeIdentity(t *testing.T) {
	t.Parallel()

	items := []*item{at(1, 1), at(2, 2), at(3, 3)}
	upsert := at(4, 3)

	got := ordering.InsertAndNormalize(items, upsert, acc)

	require.Same(t, items[0], got[0])
	require.Same(t, items[1], got[1])
	require.NotSame(t, upsert, got[2], "upserted item is always rewritten")
	require.NotSame(t, items[2], got[3])
	require.Equal(t, 3, *items[2].pos)
	require.Equal(t, 3, *upsert.pos)
}

func TestInsertAndNormalizeSamePositionStillRewritesUpsert(t *testing.T) {
	t.Parallel()

	items := []*item{at(1, 1), at(2, 2)}
	upsert := at(2, 2)

	got := ordering.InsertAndNormalize(items, upsert, acc)
	require.Equal(t, []pair{{1, 1}, {2, 2}}, flatten(got))
	require.Same(t, items[0], got[0])
	require.NotSame(t, upsert, got[1])
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("closes the gap after a removal", func(t *testing.T) {
		t.Parallel()
		items := []*item{at(1, 1), at(3, 3)}
		got := ordering.Normalize(items, acc)
		require.Equal(t, []pair{{1, 1}, {3, 2}}, flatten(got))
		require.Same(t, items[0], got[0])
		require.Equal(t, 3, *items[1].pos)
	})

	t.Run("dense input is returned unchanged", func(t *testing.T) {
		t.Parallel()
		items := []*item{at(1, 1), at(2, 2)}
		got := ordering.Normalize(items, acc)
		require.Same(t, items[0], got[0])
		require.Same(t, items[1], got[1])
		require.Empty(t, ordering.Changed(items, got, acc))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, ordering.Normalize([]*item{}, acc))
	})
}

func TestChanged(t *testing.T) {
	t.Parallel()

	before := []*item{at(1, 1), at(2, 2), at(3, 3)}
	after := ordering.InsertAndNormalize(before, at(4, 1), acc)

	require.Equal(t, []pair{{4, 1}, {1, 2}, {2, 3}, {3, 4}}, flatten(ordering.Changed(before, after, acc)))

	after = ordering.InsertAndNormalize(before, unset(4), acc)
	require.Equal(t, []pair{{4, 4}}, flatten(ordering.Changed(before, after, acc)))
}

func TestInsertAndNormalizeRandomized(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		n := r.IntN(8)
		items := make([]*item, n)
		for i := range items {
			items[i] = at(i+1, i+1)
		}

		var upsert *item
		switch id := r.IntN(n+2) + 1; r.IntN(3) {
		case 0:
			upsert = unset(id)
		default:
			upsert = at(id, r.IntN(n+4)-2)
		}

		_, existed := func() (int, bool) {
			for i, it := range items {
				if it.id == upsert.id {
					return i, true
				}
			}
			return 0, false
		}()

		got := ordering.InsertAndNormalize(items, upsert, acc)

		wantLen := n + 1
		if existed {
			wantLen = n
		}
		require.Len(t, got, wantLen)
		require.True(t, ordering.IsDense(got, acc))

		p, ok := acc.Position(upsert)
		for _, it := range got {
			if it.id != upsert.id {
				continue
			}
			switch {
			case !ok:
				require.Equal(t, wantLen, *it.pos)
			case p <= 0:
				require.Equal(t, 1, *it.pos)
			}
		}
	}
}
