package service

import (
	"encoding/json"

	"lob/domain/orderbook"
)

const eventVersion = 1

type EventType string

const (
	EventAdded     EventType = "order_added"
	EventCancelled EventType = "order_cancelled"
	EventExecuted  EventType = "order_executed"
	EventFilled    EventType = "order_filled"
)

// Event is the outbox payload published for every applied command.
// Qty is the added, cancelled or executed quantity; Remaining is what
// still rests afterwards.
type Event struct {
	V         int       `json:"v"`
	Type      EventType `json:"type"`
	Seq       uint64    `json:"seq"`
	OrderID   uint64    `json:"order_id"`
	Side      string    `json:"side"`
	Price     int64     `json:"price"`
	Qty       int64     `json:"qty"`
	Remaining int64     `json:"remaining"`
	BestBid   *int64    `json:"best_bid,omitempty"`
	BestAsk   *int64    `json:"best_ask,omitempty"`
}

func newEvent(t EventType, seq uint64, o orderbook.Order, qty, remaining int64, book *orderbook.OrderBook) Event {
	e := Event{
		V:         eventVersion,
		Type:      t,
		Seq:       seq,
		OrderID:   o.ID,
		Side:      o.Side.String(),
		Price:     o.Price,
		Qty:       qty,
		Remaining: remaining,
	}
	if p, ok := book.BestBid(); ok {
		e.BestBid = &p
	}
	if p, ok := book.BestAsk(); ok {
		e.BestAsk = &p
	}
	return e
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
