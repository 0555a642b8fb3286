package orderbook

import "fmt"

// PriceLevel is a FIFO queue of orders resting at one price on one side.
type PriceLevel struct {
	Price int64
	Side  Side

	head ref
	tail ref

	TotalQty   int64
	OrderCount int

	orders *arena
}

func newPriceLevel(side Side, price int64, orders *arena) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Side:   side,
		head:   noRef,
		tail:   noRef,
		orders: orders,
	}
}

// enqueue appends the order to the tail of the queue.
func (p *PriceLevel) enqueue(r ref) {
	s := p.orders.at(r)
	s.prev = p.tail
	s.next = noRef
	if p.tail == noRef {
		p.head = r
	} else {
		p.orders.at(p.tail).next = r
	}
	p.tail = r

	p.TotalQty += s.order.Qty
	p.OrderCount++
}

// dequeue unlinks an order that is queued at this level.
func (p *PriceLevel) dequeue(r ref) {
	s := p.orders.at(r)
	if s.prev != noRef {
		p.orders.at(s.prev).next = s.next
	} else {
		p.head = s.next
	}
	if s.next != noRef {
		p.orders.at(s.next).prev = s.prev
	} else {
		p.tail = s.prev
	}
	s.prev, s.next = noRef, noRef

	p.TotalQty -= s.order.Qty
	p.OrderCount--
}

func (p *PriceLevel) Empty() bool {
	return p.OrderCount == 0
}

// Head returns the oldest order at this level.
func (p *PriceLevel) Head() (Order, bool) {
	if p.head == noRef {
		return Order{}, false
	}
	return p.orders.at(p.head).order, true
}

// Orders returns copies of the queued orders, oldest first.
func (p *PriceLevel) Orders() []Order {
	out := make([]Order, 0, p.OrderCount)
	p.each(func(o *Order) bool {
		out = append(out, *o)
		return true
	})
	return out
}

func (p *PriceLevel) each(fn func(*Order) bool) {
	for r := p.head; r != noRef; {
		s := p.orders.at(r)
		next := s.next
		if !fn(&s.order) {
			return
		}
		r = next
	}
}

func (p *PriceLevel) String() string {
	return fmt.Sprintf("PriceLevel{Side=%s, Price=%d, Orders=%d, TotalQty=%d}",
		p.Side, p.Price, p.OrderCount, p.TotalQty)
}

// LevelView is a read-only summary of a price level.
type LevelView struct {
	Price      int64
	TotalQty   int64
	OrderCount int
}

func (p *PriceLevel) View() LevelView {
	return LevelView{Price: p.Price, TotalQty: p.TotalQty, OrderCount: p.OrderCount}
}
