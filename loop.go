package kd

import (
	"time"

	"github.com/kdrt/kd/internal/ring"
)

// eventQueue is the per-thread FIFO of pending events plus the single
// "held" last-event slot (§3). Only the owning thread drains it; any
// thread may push.
type eventQueue struct {
	fifo      *ring.FIFO
	lastEvent *Event
}

func newEventQueue(capacityHint int) *eventQueue {
	return &eventQueue{fifo: ring.New(capacityHint)}
}

func (q *eventQueue) push(e *Event) {
	q.fifo.PushTail(e)
}

func (q *eventQueue) pushFront(e *Event) {
	q.fifo.PushHead(e)
}

func (q *eventQueue) pop() (*Event, bool) {
	v, ok := q.fifo.PopHead()
	if !ok {
		return nil, false
	}
	return v.(*Event), true
}

func (q *eventQueue) size() int { return q.fifo.Size() }

func (q *eventQueue) freeHeld() {
	if q.lastEvent != nil {
		q.lastEvent.Free()
		q.lastEvent = nil
	}
}

// HostSource is a registered host event source (§4.7, §9 REDESIGN FLAGS:
// "a trait/interface host event source, one implementation per host").
// Pump calls Poll on every registered source each cycle; the source
// translates whatever native messages are available into core Events via
// emit, and returns. A source's Poll must not block.
type HostSource interface {
	Poll(emit func(*Event) bool)
}

// RegisterHostSource attaches a host event source to t. Pump drains all
// registered sources after processing the queued snapshot (§4.5 step 2).
func (t *Thread) RegisterHostSource(s HostSource) {
	t.sourcesMu.Lock()
	t.sources = append(t.sources, s)
	t.sourcesMu.Unlock()
}

// UnregisterHostSource removes a previously registered source, by
// identity, if present.
func (t *Thread) UnregisterHostSource(s HostSource) {
	t.sourcesMu.Lock()
	defer t.sourcesMu.Unlock()
	for i, existing := range t.sources {
		if existing == s {
			t.sources = append(t.sources[:i], t.sources[i+1:]...)
			return
		}
	}
}

// InstallCallback registers fn for events matching (kind, userPtr),
// replacing any existing registration with the same key (§4.4). A nil fn
// removes the registration.
func (t *Thread) InstallCallback(fn Callback, kind Kind, userPtr any) {
	t.callbacks.install(fn, kind, userPtr)
}

// Post enqueues e on t's own queue, assigning e.Timestamp from the clock
// if it is zero (§3). Equivalent to the original API's post-to-self.
func (t *Thread) Post(e *Event) {
	if e.Timestamp == 0 {
		e.Timestamp = t.clock.NowNanos()
	}
	t.queue.push(e)
}

// PostTo enqueues e on target's queue (§4.4 "post to another thread").
// Safe to call from any goroutine; target's queue has its own mutex.
func (t *Thread) PostTo(target *Thread, e *Event) {
	if e.Timestamp == 0 {
		e.Timestamp = t.clock.NowNanos()
	}
	target.queue.push(e)
}

// newTranslatedEvent allocates an event for host-source translation,
// honoring the allocation-failure test hook (§4.7 failure modes).
func (t *Thread) newTranslatedEvent(kind Kind, userPtr any) (*Event, bool) {
	if t.allocFailHook != nil && t.allocFailHook() {
		return nil, false
	}
	e := NewEvent()
	e.Kind = kind
	e.UserPtr = userPtr
	e.Timestamp = t.clock.NowNanos()
	return e, true
}

// emitTranslated is the sink a HostSource's Poll feeds translated events
// into: if a matching callback is installed it is invoked immediately
// (consuming the event); otherwise the event is enqueued (§4.5 step 2).
func (t *Thread) emitTranslated(e *Event) bool {
	if cb := t.callbacks.match(e); cb != nil {
		cb(e)
		return true
	}
	t.queue.push(e)
	return true
}

// Pump is the non-blocking drain-and-dispatch routine (§4.5). It never
// fails; an allocation failure while translating a host message sets
// last_error on the pumping thread rather than returning an error.
func (t *Thread) Pump() {
	// Step 1: snapshot-and-scan the existing queue.
	t.scanQueueOnce()

	// Step 2: drain host sources, translating native events to core
	// events and dispatching/enqueuing each as it arrives.
	t.sourcesMu.Lock()
	sources := append([]HostSource(nil), t.sources...)
	t.sourcesMu.Unlock()

	for _, src := range sources {
		src.Poll(func(e *Event) bool {
			if e == nil {
				t.logEntry(LogEntry{Level: LevelWarn, Category: "loop", Message: "host source translation failed allocation", Err: ErrOutOfMemory})
				t.setLastError(ErrOutOfMemory)
				return false
			}
			return t.emitTranslated(e)
		})
	}

	// With WithStrictDispatchOrder, re-scan whatever step 2 left behind
	// against the callback table once more, within this same call,
	// instead of leaving it for the next Pump.
	if t.strictDispatch {
		t.scanQueueOnce()
	}
}

// scanQueueOnce pops every slot currently in the queue from the head; a
// matching callback consumes it, otherwise it is pushed back to the tail.
// This processes callbacks in FIFO order without re-dispatching events
// that arrive after the scan has started.
func (t *Thread) scanQueueOnce() {
	n := t.queue.size()
	for i := 0; i < n; i++ {
		ev, ok := t.queue.pop()
		if !ok {
			break
		}
		if cb := t.callbacks.match(ev); cb != nil {
			cb(ev)
			continue
		}
		t.queue.push(ev)
	}
}

// Wait is the peek-style primitive (§4.5): it frees any previously held
// event, optionally sleeps, pumps once, and returns at most one event.
//
// timeoutNanos == -1 means "no sleep, just pump and peek". Any
// timeoutNanos >= 0 sleeps for that many nanoseconds first. On an empty
// queue after pumping, Wait returns (nil, ErrTryAgain).
func (t *Thread) Wait(timeoutNanos int64) (*Event, Error) {
	t.queue.freeHeld()

	if timeoutNanos != -1 {
		t.clock.Sleep(time.Duration(timeoutNanos))
	}

	t.Pump()

	ev, ok := t.queue.pop()
	if !ok {
		t.setLastError(ErrTryAgain)
		return nil, ErrTryAgain
	}
	t.queue.lastEvent = ev
	return ev, ErrNone
}

// defaultHandler implements the fallback behavior for events that reach a
// thread's queue without a matching callback and are not otherwise
// consumed by user code calling Wait: a QUIT event exits the thread, every
// other kind is silently dropped (§4.5 "Default handler").
//
// RunDefaultLoop is a convenience driver that repeatedly calls Wait and
// applies defaultHandler to whatever it returns, until the thread exits.
// It mirrors the minimal "loop { wait; handle QUIT; } " pattern used by
// worker threads throughout the original API (e.g. the timer worker, §4.6).
func RunDefaultLoop(t *Thread) {
	for {
		ev, _ := t.Wait(0)
		if ev == nil {
			continue
		}
		defaultHandler(ev)
	}
}

func defaultHandler(ev *Event) {
	if ev.Kind == KindQuit {
		Exit(nil)
	}
}
