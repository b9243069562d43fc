package kd

import "sync"

// Callback is a handler installed against a (kind, user pointer) key
// (§3 "Callback record", §4.4). A callback matches an event iff
// (kindFilter == event.Kind OR kindFilter == KindUnset) AND
// userPtrFilter == event.UserPtr. Matching consumes the event.
type Callback func(event *Event)

type callbackEntry struct {
	fn      Callback
	kind    Kind
	userPtr any
}

// callbackRegistry is the per-thread table of installed callbacks (C5).
// It is owned exclusively by its thread: only the owning goroutine reads
// or writes it, so in principle it needs no lock; a mutex is kept anyway
// because InstallCallback may legitimately be called by a different
// goroutine that holds a *Thread handle to register a handler before the
// owner starts pumping (a common bootstrap pattern).
type callbackRegistry struct {
	mu      sync.Mutex
	entries []callbackEntry // insertion order, per §4.4 "matching order"
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{}
}

// install registers fn for (kind, userPtr), replacing any existing
// registration with the same key in place: the table does not grow on
// re-registration. A nil fn logically removes the registration.
func (r *callbackRegistry) install(fn Callback, kind Kind, userPtr any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].kind == kind && r.entries[i].userPtr == userPtr {
			if fn == nil {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				return
			}
			r.entries[i].fn = fn
			return
		}
	}
	if fn == nil {
		return
	}
	r.entries = append(r.entries, callbackEntry{fn: fn, kind: kind, userPtr: userPtr})
}

// match returns the first registered callback (in insertion order) whose
// key matches event, per §3/§4.4. The wildcard kind KindUnset matches any
// event kind.
func (r *callbackRegistry) match(event *Event) Callback {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		e := &r.entries[i]
		if (e.kind == event.Kind || e.kind == KindUnset) && e.userPtr == event.UserPtr {
			return e.fn
		}
	}
	return nil
}

// len reports the number of live registrations.
func (r *callbackRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
