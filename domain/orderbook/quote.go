package orderbook

// Quote is the top of book: the best level on each side.
type Quote struct {
	Seq    uint64
	Bid    LevelView
	Ask    LevelView
	HasBid bool
	HasAsk bool
}

// SameTop reports whether two quotes show the same levels, ignoring Seq.
func (q Quote) SameTop(o Quote) bool {
	q.Seq, o.Seq = 0, 0
	return q == o
}

// Top returns the current quote. Seq is left for the caller to stamp.
func (b *OrderBook) Top() Quote {
	var q Quote
	if b.bestBid != nil {
		q.Bid, q.HasBid = b.bestBid.View(), true
	}
	if b.bestAsk != nil {
		q.Ask, q.HasAsk = b.bestAsk.View(), true
	}
	return q
}
