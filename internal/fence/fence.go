// Package fence hands out per-stream sequence numbers so that a response
// can be checked against the requests dispatched or applied before it.
package fence

import "sync/atomic"

// Sequence is a monotonically increasing dispatch counter.
// The zero value is ready to use.
type Sequence struct {
	latest  atomic.Uint64
	applied atomic.Uint64
}

// Next reserves the next sequence number. Call it when a request is dispatched.
func (s *Sequence) Next() uint64 {
	return s.latest.Add(1)
}

// Latest reports whether seq is still the newest dispatched number.
func (s *Sequence) Latest(seq uint64) bool {
	return s.latest.Load() == seq
}

// Current returns the newest dispatched number, 0 if none.
func (s *Sequence) Current() uint64 {
	return s.latest.Load()
}

// Advance marks seq as applied if it is newer than anything applied so far.
// A false result means a later response has already been applied.
func (s *Sequence) Advance(seq uint64) bool {
	for {
		cur := s.applied.Load()
		if seq <= cur {
			return false
		}
		if s.applied.CompareAndSwap(cur, seq) {
			return true
		}
	}
}

// Applied returns the newest applied number, 0 if none.
func (s *Sequence) Applied() uint64 {
	return s.applied.Load()
}
