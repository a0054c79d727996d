package service

import (
	"context"
	"sync"
	"time"
)

// ResponseSlot is a single-valued rendezvous cell handing one human-supplied
// string from the control surface to a waiting broker. It is a single-slot
// mailbox, not a queue: while armed, Fill overwrites the value
// (last-writer-wins); while unarmed, input is discarded. Each Arm issues a
// new request token so a stale Fill can never satisfy a later request.
type ResponseSlot struct {
	mu     sync.Mutex
	token  uint64
	armed  bool
	filled bool
	value  string
	ready  chan struct{}
}

// NewResponseSlot creates an unarmed slot.
func NewResponseSlot() *ResponseSlot {
	return &ResponseSlot{}
}

// Arm clears the slot and opens a new request cycle, returning the cycle's
// token. Any previously stored value is dropped.
func (s *ResponseSlot) Arm() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.armed = true
	s.filled = false
	s.value = ""
	s.ready = make(chan struct{})
	return s.token
}

// Disarm closes the current request cycle. Input arriving afterwards is
// discarded until the next Arm.
func (s *ResponseSlot) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = false
}

// Fill stores the value and signals readiness. Filling an already-ready slot
// overwrites the value without error. Fill reports whether the value was
// accepted; input with no outstanding request is discarded.
func (s *ResponseSlot) Fill(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return false
	}
	s.value = value
	if !s.filled {
		s.filled = true
		close(s.ready)
	}
	return true
}

// Wait blocks until the slot armed with token is filled, then returns the
// stored value. The slot stays ready; the caller owns the next Arm. A zero
// timeout waits indefinitely. Returns ErrInputTimeout once timeout elapses
// and ctx.Err() on cancellation.
func (s *ResponseSlot) Wait(ctx context.Context, token uint64, timeout time.Duration) (string, error) {
	s.mu.Lock()
	if !s.armed || s.token != token {
		s.mu.Unlock()
		return "", ErrRequestSuperseded
	}
	ready := s.ready
	s.mu.Unlock()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-ready:
	case <-timeoutCh:
		return "", ErrInputTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		return "", ErrRequestSuperseded
	}
	return s.value, nil
}
