package confirm

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is delivered to a waiting caller whose confirmation request
// was replaced by a newer one before anybody answered it.
var ErrSuperseded = errors.New("confirmation superseded by a newer request")

type outcome struct {
	accepted bool
	err      error
}

// Slot holds at most one pending confirmation. A new Request replaces any
// unresolved previous one, and the superseded caller gets ErrSuperseded
// instead of waiting forever on an answer that will never come.
type Slot struct {
	mu      sync.Mutex
	prompt  string
	pending chan outcome
}

func NewSlot() *Slot {
	return &Slot{}
}

// Request parks the caller until Resolve answers, the request is superseded,
// or ctx is done.
func (s *Slot) Request(ctx context.Context, prompt string) (bool, error) {
	ch := make(chan outcome, 1)

	s.mu.Lock()
	if s.pending != nil {
		s.pending <- outcome{err: ErrSuperseded}
	}
	s.prompt = prompt
	s.pending = ch
	s.mu.Unlock()

	select {
	case result := <-ch:
		return result.accepted, result.err
	case <-ctx.Done():
		s.mu.Lock()
		if s.pending == ch {
			s.prompt = ""
			s.pending = nil
		}
		s.mu.Unlock()
		return false, ctx.Err()
	}
}

// Resolve answers the pending request. Reports false when nothing was
// pending (a stale dialog answered after replacement or cancellation).
func (s *Slot) Resolve(accepted bool) bool {
	s.mu.Lock()
	ch := s.pending
	s.prompt = ""
	s.pending = nil
	s.mu.Unlock()

	if ch == nil {
		return false
	}
	ch <- outcome{accepted: accepted}
	return true
}

// Pending reports the prompt awaiting an answer, if any.
func (s *Slot) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt, s.pending != nil
}
