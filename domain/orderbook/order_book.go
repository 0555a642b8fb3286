package orderbook

import "time"

// OrderBook is single-writer and deterministic.
type OrderBook struct {
	bids PriceIndex
	asks PriceIndex

	orders *arena

	bestBid *PriceLevel
	bestAsk *PriceLevel
	resting [2]int

	seq    uint64
	policy UnknownOrderPolicy
	clock  func() time.Time
}

// NewOrderBook creates an empty book. By default it uses red-black
// tree price indices and the Strict unknown-order policy.
func NewOrderBook(opts ...Option) *OrderBook {
	o := options{
		policy:   Strict,
		index:    IndexRBTree,
		capacity: 1024,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &OrderBook{
		bids:   newPriceIndex(o.index),
		asks:   newPriceIndex(o.index),
		orders: newArena(o.capacity),
		policy: o.policy,
		clock:  o.clock,
	}
}

func (b *OrderBook) Policy() UnknownOrderPolicy { return b.policy }

// ---- commands ----

// CheckAdd reports the error Add would return, without mutating the book.
func (b *OrderBook) CheckAdd(id uint64, side Side, qty int64) error {
	switch {
	case id == 0:
		return wrapf(ErrInvalidOrderID, "id must be positive")
	case !side.Valid():
		return wrapf(ErrInvalidSide, "%d", side)
	case qty <= 0:
		return wrapf(ErrInvalidQuantity, "add %d: quantity %d", id, qty)
	}
	if _, ok := b.orders.lookup(id); ok {
		return wrapf(ErrDuplicateOrderID, "%d", id)
	}
	return nil
}

// Add rests a new order at the tail of its price level. Orders are
// never crossed against the opposite side.
func (b *OrderBook) Add(id uint64, side Side, qty, price int64) error {
	if err := b.CheckAdd(id, side, qty); err != nil {
		return err
	}

	b.seq++
	r := b.orders.alloc(Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Qty:       qty,
		SeqID:     b.seq,
		EntryTime: b.clock().UnixNano(),
	})

	lvl, created := b.side(side).UpsertLevel(price, func() *PriceLevel {
		return newPriceLevel(side, price, b.orders)
	})
	lvl.enqueue(r)
	b.resting[side]++

	if created {
		b.improveBest(lvl)
	}
	return nil
}

// CheckCancel reports the error Cancel would return.
func (b *OrderBook) CheckCancel(id uint64) error {
	if _, ok := b.orders.lookup(id); !ok {
		return b.unknown("cancel", id)
	}
	return nil
}

// Cancel removes a resting order.
func (b *OrderBook) Cancel(id uint64) error {
	r, ok := b.orders.lookup(id)
	if !ok {
		return b.unknown("cancel", id)
	}
	b.remove(r)
	return nil
}

// CheckExecute reports the error Execute would return.
func (b *OrderBook) CheckExecute(id uint64, qty int64) error {
	if qty <= 0 {
		return wrapf(ErrInvalidQuantity, "execute %d: quantity %d", id, qty)
	}
	r, ok := b.orders.lookup(id)
	if !ok {
		return b.unknown("execute", id)
	}
	if rem := b.orders.at(r).order.Qty; qty > rem {
		return wrapf(ErrInvalidQuantity, "execute %d: quantity %d exceeds remaining %d", id, qty, rem)
	}
	return nil
}

// Execute fills qty of a resting order. Filling the whole remaining
// quantity removes the order exactly as Cancel would.
func (b *OrderBook) Execute(id uint64, qty int64) error {
	if err := b.CheckExecute(id, qty); err != nil {
		return err
	}
	r, ok := b.orders.lookup(id)
	if !ok {
		// Idempotent policy
		return nil
	}

	s := b.orders.at(r)
	if s.order.Qty == qty {
		b.remove(r)
		return nil
	}
	s.order.Qty -= qty
	b.level(s.order.Side, s.order.Price).TotalQty -= qty
	return nil
}

// ---- queries ----

// BestBid returns the highest resting buy price.
func (b *OrderBook) BestBid() (int64, bool) {
	if b.bestBid == nil {
		return 0, false
	}
	return b.bestBid.Price, true
}

// BestAsk returns the lowest resting sell price.
func (b *OrderBook) BestAsk() (int64, bool) {
	if b.bestAsk == nil {
		return 0, false
	}
	return b.bestAsk.Price, true
}

// Spread returns best ask minus best bid when both sides are present.
// It can be zero or negative since the book does not cross.
func (b *OrderBook) Spread() (int64, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

func (b *OrderBook) Order(id uint64) (Order, bool) {
	r, ok := b.orders.lookup(id)
	if !ok {
		return Order{}, false
	}
	return b.orders.at(r).order, true
}

// Len returns the number of resting orders.
func (b *OrderBook) Len() int { return b.orders.len() }

// OrderCount returns the number of resting orders on a side.
func (b *OrderBook) OrderCount(side Side) int {
	if !side.Valid() {
		return 0
	}
	return b.resting[side]
}

// LevelCount returns the number of price levels on a side.
func (b *OrderBook) LevelCount(side Side) int {
	return b.side(side).Size()
}

func (b *OrderBook) Level(side Side, price int64) (LevelView, bool) {
	lvl := b.level(side, price)
	if lvl == nil {
		return LevelView{}, false
	}
	return lvl.View(), true
}

// LevelOrders returns the orders at one price, oldest first.
func (b *OrderBook) LevelOrders(side Side, price int64) []Order {
	lvl := b.level(side, price)
	if lvl == nil {
		return nil
	}
	return lvl.Orders()
}

// Depth returns up to n levels of a side, best price first. n <= 0
// returns every level.
func (b *OrderBook) Depth(side Side, n int) []LevelView {
	out := make([]LevelView, 0, max(n, 0))
	b.walkSide(side, func(lvl *PriceLevel) bool {
		out = append(out, lvl.View())
		return n <= 0 || len(out) < n
	})
	return out
}

// Walk visits every resting order: bids best to worst, then asks best
// to worst, oldest first within a level.
func (b *OrderBook) Walk(fn func(Order)) {
	visit := func(lvl *PriceLevel) bool {
		lvl.each(func(o *Order) bool {
			fn(*o)
			return true
		})
		return true
	}
	b.bids.ForEachDescending(visit)
	b.asks.ForEachAscending(visit)
}

// ---- internals ----

func (b *OrderBook) side(s Side) PriceIndex {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) level(s Side, price int64) *PriceLevel {
	if !s.Valid() {
		return nil
	}
	return b.side(s).FindLevel(price)
}

func (b *OrderBook) walkSide(s Side, fn func(*PriceLevel) bool) {
	switch s {
	case Bid:
		b.bids.ForEachDescending(fn)
	case Ask:
		b.asks.ForEachAscending(fn)
	}
}

func (b *OrderBook) unknown(op string, id uint64) error {
	if b.policy == Idempotent {
		return nil
	}
	return wrapf(ErrUnknownOrder, "%s %d", op, id)
}

func (b *OrderBook) improveBest(lvl *PriceLevel) {
	if lvl.Side == Bid {
		if b.bestBid == nil || lvl.Price > b.bestBid.Price {
			b.bestBid = lvl
		}
		return
	}
	if b.bestAsk == nil || lvl.Price < b.bestAsk.Price {
		b.bestAsk = lvl
	}
}

// remove is the single exit path for a resting order. It unlinks the
// order, drops it from the id index, deletes an emptied level and
// re-derives the cached best price for that side.
func (b *OrderBook) remove(r ref) {
	o := b.orders.at(r).order
	lvl := b.level(o.Side, o.Price)
	lvl.dequeue(r)
	b.orders.release(r)
	b.resting[o.Side]--

	if !lvl.Empty() {
		return
	}
	idx := b.side(o.Side)
	idx.DeleteLevel(o.Price)
	lvl.orders = nil

	switch {
	case o.Side == Bid && lvl == b.bestBid:
		b.bestBid = idx.MaxLevel()
	case o.Side == Ask && lvl == b.bestAsk:
		b.bestAsk = idx.MinLevel()
	}
}
