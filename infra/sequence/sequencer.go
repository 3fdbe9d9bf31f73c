package sequence

import "sync/atomic"

// Sequencer issues strictly monotonic sequence numbers. They order journal
// records and supply the placedAt value that breaks price ties FIFO.
type Sequencer struct {
	last atomic.Uint64
}

// New creates a sequencer whose next value is start+1. A fresh engine starts
// at 0; after journal replay, start is the highest replayed sequence.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued sequence number.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Advance raises the sequencer to at least v. Used only during replay.
func (s *Sequencer) Advance(v uint64) {
	for {
		cur := s.last.Load()
		if cur >= v || s.last.CompareAndSwap(cur, v) {
			return
		}
	}
}
