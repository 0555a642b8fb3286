package orderbook

import (
	"fmt"
	"time"
)

// UnknownOrderPolicy decides what Cancel and Execute do with an id that
// is not resting in the book.
type UnknownOrderPolicy uint8

const (
	// Strict returns ErrUnknownOrder.
	Strict UnknownOrderPolicy = iota
	// Idempotent treats the call as a successful no-op.
	Idempotent
)

func (p UnknownOrderPolicy) String() string {
	if p == Idempotent {
		return "idempotent"
	}
	return "strict"
}

// ParseUnknownOrderPolicy maps "strict" and "idempotent" to a policy.
func ParseUnknownOrderPolicy(v string) (UnknownOrderPolicy, error) {
	switch v {
	case "", "strict":
		return Strict, nil
	case "idempotent":
		return Idempotent, nil
	default:
		return Strict, fmt.Errorf("unknown order policy %q", v)
	}
}

type options struct {
	policy   UnknownOrderPolicy
	index    IndexKind
	capacity int
	clock    func() time.Time
}

type Option func(*options)

func WithUnknownOrderPolicy(p UnknownOrderPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithIndex selects the price index implementation used for both sides.
func WithIndex(kind IndexKind) Option {
	return func(o *options) { o.index = kind }
}

// WithCapacity pre-sizes the order arena.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithClock overrides the clock used to stamp EntryTime.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}
