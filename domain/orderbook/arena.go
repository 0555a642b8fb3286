package orderbook

// ref addresses a slot in the arena. noRef marks an absent neighbour.
type ref int32

const noRef ref = -1

type slot struct {
	order Order
	prev  ref
	next  ref
}

// arena owns every resting order. Queue links between orders are slot
// indices, so no order holds a pointer to another order or its level.
type arena struct {
	slots []slot
	free  []ref
	byID  map[uint64]ref
}

func newArena(capacity int) *arena {
	if capacity < 0 {
		capacity = 0
	}
	return &arena{
		slots: make([]slot, 0, capacity),
		byID:  make(map[uint64]ref, capacity),
	}
}

func (a *arena) alloc(o Order) ref {
	var r ref
	if n := len(a.free); n > 0 {
		r = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{})
		r = ref(len(a.slots) - 1)
	}
	a.slots[r] = slot{order: o, prev: noRef, next: noRef}
	a.byID[o.ID] = r
	return r
}

// release drops the slot from the id index and recycles it. The slot
// must already be unlinked from its level.
func (a *arena) release(r ref) {
	s := &a.slots[r]
	delete(a.byID, s.order.ID)
	*s = slot{prev: noRef, next: noRef}
	a.free = append(a.free, r)
}

func (a *arena) lookup(id uint64) (ref, bool) {
	r, ok := a.byID[id]
	return r, ok
}

func (a *arena) at(r ref) *slot {
	return &a.slots[r]
}

func (a *arena) len() int {
	return len(a.byID)
}
