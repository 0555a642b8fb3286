package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing journal sequence numbers.
type Sequencer struct {
	last atomic.Uint64
}

// New creates a sequencer whose next value is start+1. A fresh engine
// starts at 0; a recovered one starts at the last replayed seq.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

// Next reserves and returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Reset moves the sequencer to v. Only recovery calls this.
func (s *Sequencer) Reset(v uint64) {
	s.last.Store(v)
}
