// Package hosttest provides a fake host event source for deterministic
// tests of the event-loop pump and the window bridge, without depending on
// any real platform poller.
package hosttest

import "github.com/kdrt/kd"

// Source is a manually driven fake implementation of kd.HostSource. Tests
// Queue whatever events they want the pump to observe on its next cycle;
// Poll hands them to the production code exactly as a real platform poller
// would.
//
// Queueing a nil event simulates the allocation-failure path: Poll passes
// it straight to emit, which the pump interprets as an out-of-memory
// translation failure, and stops draining this Source for the remainder of
// the current Poll call (later queued events are delivered next cycle).
type Source struct {
	pending []*kd.Event
}

// New returns an empty Source.
func New() *Source { return &Source{} }

// Queue appends ev to the events Poll will deliver on its next call.
func (s *Source) Queue(ev *kd.Event) { s.pending = append(s.pending, ev) }

// Poll implements kd.HostSource.
func (s *Source) Poll(emit func(*kd.Event) bool) {
	for len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		if !emit(ev) {
			return
		}
	}
}

// Len reports the number of events still queued.
func (s *Source) Len() int { return len(s.pending) }
