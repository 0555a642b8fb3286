package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLevel(qtys ...int64) (*PriceLevel, *arena, []ref) {
	a := newArena(len(qtys))
	lvl := newPriceLevel(Bid, 100, a)
	refs := make([]ref, 0, len(qtys))
	for i, q := range qtys {
		r := a.alloc(Order{ID: uint64(i + 1), Side: Bid, Price: 100, Qty: q})
		lvl.enqueue(r)
		refs = append(refs, r)
	}
	return lvl, a, refs
}

func ids(orders []Order) []uint64 {
	out := make([]uint64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestPriceLevelEnqueueAggregates(t *testing.T) {
	lvl, _, _ := newTestLevel(5, 7, 11)

	assert.Equal(t, 3, lvl.OrderCount)
	assert.EqualValues(t, 23, lvl.TotalQty)
	assert.Equal(t, []uint64{1, 2, 3}, ids(lvl.Orders()))

	head, ok := lvl.Head()
	assert.True(t, ok)
	assert.EqualValues(t, 1, head.ID)
}

func TestPriceLevelDequeuePositions(t *testing.T) {
	tests := []struct {
		name    string
		remove  int
		wantIDs []uint64
		wantQty int64
	}{
		{"head", 0, []uint64{2, 3, 4}, 22},
		{"middle", 2, []uint64{1, 2, 4}, 13},
		{"tail", 3, []uint64{1, 2, 3}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, _, refs := newTestLevel(1, 4, 10, 8)
			lvl.dequeue(refs[tt.remove])

			assert.Equal(t, tt.wantIDs, ids(lvl.Orders()))
			assert.Equal(t, 3, lvl.OrderCount)
			assert.Equal(t, tt.wantQty, lvl.TotalQty)
		})
	}
}

func TestPriceLevelDrainToEmpty(t *testing.T) {
	lvl, _, refs := newTestLevel(3, 3)
	lvl.dequeue(refs[1])
	lvl.dequeue(refs[0])

	assert.True(t, lvl.Empty())
	assert.Zero(t, lvl.TotalQty)
	_, ok := lvl.Head()
	assert.False(t, ok)
	assert.Empty(t, lvl.Orders())

	// a drained level accepts new orders again
	lvl.enqueue(refs[0])
	assert.Equal(t, []uint64{1}, ids(lvl.Orders()))
}
