package orderbook

import "strings"

type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

// Valid reports whether s is Bid or Ask.
func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

// ParseSide accepts bid/buy and ask/sell in any case.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bid", "buy":
		return Bid, nil
	case "ask", "sell":
		return Ask, nil
	default:
		return 0, wrapf(ErrInvalidSide, "%q", v)
	}
}

// Order is a resting order. Values handed out by the book are copies.
type Order struct {
	ID    uint64
	Side  Side
	Price int64
	Qty   int64 // remaining
	SeqID uint64

	// EntryTime is recorded on insertion and never consulted.
	EntryTime int64
}
