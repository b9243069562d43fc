package kd

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// DetachState selects whether a spawned Thread must be Join-ed or is
// reclaimed automatically at termination (§4.3).
type DetachState int

const (
	Joinable DetachState = iota
	Detached
)

// ThreadAttr carries optional creation attributes for Spawn (§4.3).
type ThreadAttr struct {
	DetachState DetachState
	StackSize   uint64 // advisory; Go manages goroutine stacks itself
	DebugName   string
}

// NewThreadAttr returns attributes defaulting to Joinable with no stack
// size hint and no debug name.
func NewThreadAttr() *ThreadAttr {
	return &ThreadAttr{DetachState: Joinable}
}

// threadState is the per-thread lifecycle state machine (§4.3).
type threadState int32

const (
	stateCreated threadState = iota
	stateRunning
	stateExited
	stateJoined
	stateDetached
)

// Thread is the per-thread context (§3): owned event queue, at most one
// held last-event, thread-local last-error, the callback table, a single
// opaque TLS slot for user code, and the native goroutine this context
// wraps. A Thread exists iff the goroutine it wraps is running or has not
// yet been joined.
type Thread struct {
	id   uint64
	attr ThreadAttr

	queue     *eventQueue
	callbacks *callbackRegistry

	lastErrorMu sync.Mutex
	lastError   Error

	faultMu   sync.Mutex
	lastFault *Fault

	tlsSlot atomic.Value // user-owned opaque pointer

	state    atomic.Int32
	done     chan struct{} // closed when the goroutine's entry function returns
	retval   any
	joinOnce sync.Once

	logger         Logger
	clock          Clock
	strictDispatch bool

	sourcesMu sync.Mutex
	sources   []HostSource

	allocFailHook func() bool

	// isMain marks the bootstrap-constructed main thread context (§4.8).
	isMain bool
}

var (
	threadRegistryOnce sync.Once
	threadRegistryMu   sync.Mutex
	threadRegistry     map[uint64]*Thread // goroutine ID -> owning Thread

	nextThreadID atomic.Uint64
)

func initThreadRegistry() {
	threadRegistryOnce.Do(func() {
		threadRegistryMu.Lock()
		threadRegistry = make(map[uint64]*Thread)
		threadRegistryMu.Unlock()
	})
}

// goroutineID returns the calling goroutine's numeric ID, parsed from the
// runtime stack trace header. Go has no native thread-local storage, but
// every Thread we construct owns exactly one goroutine for its lifetime,
// so keying a lookup table by goroutine ID gives the same ambient
// per-thread state guarantee a pthread TLS key would.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func registerThread(t *Thread, gid uint64) {
	initThreadRegistry()
	threadRegistryMu.Lock()
	threadRegistry[gid] = t
	threadRegistryMu.Unlock()
}

func unregisterThread(gid uint64) {
	threadRegistryMu.Lock()
	delete(threadRegistry, gid)
	threadRegistryMu.Unlock()
}

// Self returns the current goroutine's Thread context, or nil if the
// calling goroutine was not created via Spawn (or is not the bootstrap
// main thread).
func Self() *Thread {
	initThreadRegistry()
	threadRegistryMu.Lock()
	defer threadRegistryMu.Unlock()
	return threadRegistry[goroutineID()]
}

func newThread(attr ThreadAttr, opts *runtimeOptions) *Thread {
	t := &Thread{
		id:             nextThreadID.Add(1),
		attr:           attr,
		callbacks:      newCallbackRegistry(),
		done:           make(chan struct{}),
		logger:         opts.logger,
		clock:          opts.clock,
		strictDispatch: opts.strictDispatch,
		allocFailHook:  opts.allocFailHook,
	}
	t.queue = newEventQueue(opts.queueCapacityHint)
	t.state.Store(int32(stateCreated))
	return t
}

// Spawn creates a new Thread running entry(arg) on its own goroutine, per
// §4.3. Detached threads are torn down (context freed) as soon as the
// goroutine exits; joinable threads retain their context until Join.
func Spawn(attr *ThreadAttr, entry func(arg any) any, arg any, opts ...Option) *Thread {
	if attr == nil {
		attr = NewThreadAttr()
	}
	o := resolveOptions(opts)
	t := newThread(*attr, o)

	ready := make(chan struct{})
	go func() {
		gid := goroutineID()
		registerThread(t, gid)
		t.state.Store(int32(stateRunning))
		close(ready)

		t.logf(LevelDebug, "thread", "spawned")

		defer func() {
			r := recover()
			unregisterThread(gid)
			t.teardown()
			if r != nil {
				switch v := r.(type) {
				case threadExitSignal:
					t.logf(LevelDebug, "thread", "exited via Exit")
				case *Fault:
					t.setFault(v)
					t.logEntry(LogEntry{Level: LevelError, Category: "thread", ThreadID: t.id, Message: "recovered fault at thread top level", Err: v})
				default:
					// A genuine panic leaves the thread unjoinable rather
					// than reporting a false clean completion; repanicking
					// here crashes the process per normal Go semantics.
					panic(r)
				}
			} else {
				t.logf(LevelDebug, "thread", "entry returned")
			}
			close(t.done)
		}()

		t.retval = entry(arg)
	}()
	<-ready

	if attr.DetachState == Detached {
		t.state.Store(int32(stateDetached))
	}
	return t
}

// threadExitSignal is the panic value used by Exit to unwind the calling
// goroutine's stack down to Spawn's recover, running deferred teardown
// exactly once, without looking like an uncaught panic to the caller.
type threadExitSignal struct{}

// Exit never returns: it terminates the calling thread and runs context
// teardown (§4.3). retval is recorded for a subsequent Join.
func Exit(retval any) {
	if t := Self(); t != nil {
		t.retval = retval
	}
	panic(threadExitSignal{})
}

// teardown frees the per-thread queue and held last-event. Called exactly
// once, from the goroutine's own deferred cleanup.
func (t *Thread) teardown() {
	t.lastErrorMu.Lock()
	t.queue.freeHeld()
	t.lastErrorMu.Unlock()
}

// Join blocks until t terminates, then frees its context. Fails with
// ErrInvalid if t is not joinable (already detached, or already joined).
func (t *Thread) Join() (any, Error) {
	state := threadState(t.state.Load())
	if state == stateDetached || state == stateJoined {
		return nil, ErrInvalid
	}
	<-t.done
	var retval any
	t.joinOnce.Do(func() {
		retval = t.retval
		t.state.Store(int32(stateJoined))
		t.logf(LevelDebug, "thread", "joined")
	})
	return retval, ErrNone
}

// Detach transitions a joinable thread to detached (§4.3). Fails with
// ErrInvalid if t is already detached.
func (t *Thread) Detach() Error {
	if !t.state.CompareAndSwap(int32(stateRunning), int32(stateDetached)) &&
		!t.state.CompareAndSwap(int32(stateCreated), int32(stateDetached)) {
		return ErrInvalid
	}
	t.logf(LevelDebug, "thread", "detached")
	return ErrNone
}

// setFault records the most recent Fault recovered at this thread's top
// level, for callers that want to distinguish a faulted exit from a clean
// one after Join returns.
func (t *Thread) setFault(f *Fault) {
	t.faultMu.Lock()
	t.lastFault = f
	t.faultMu.Unlock()
}

// LastFault returns the Fault recovered at t's top level, or nil if t
// never faulted.
func (t *Thread) LastFault() *Fault {
	t.faultMu.Lock()
	defer t.faultMu.Unlock()
	return t.lastFault
}

// logf is a convenience wrapper over Log that skips building a LogEntry
// when the level is disabled.
func (t *Thread) logf(level LogLevel, category, message string) {
	if !t.logger.IsEnabled(level) {
		return
	}
	t.logEntry(LogEntry{Level: level, Category: category, ThreadID: t.id, Message: message})
}

func (t *Thread) logEntry(entry LogEntry) {
	if !t.logger.IsEnabled(entry.Level) {
		return
	}
	if entry.ThreadID == 0 {
		entry.ThreadID = t.id
	}
	t.logger.Log(entry)
}

// SetTLS stores a single user-owned opaque value in the thread's TLS slot.
func (t *Thread) SetTLS(v any) { t.tlsSlot.Store(boxTLS{v}) }

// TLS returns the value last stored via SetTLS, or nil if none.
func (t *Thread) TLS() any {
	if b, ok := t.tlsSlot.Load().(boxTLS); ok {
		return b.v
	}
	return nil
}

// boxTLS lets atomic.Value hold a nil interface (atomic.Value rejects
// storing inconsistent concrete types across calls, including nil).
type boxTLS struct{ v any }

// LastError returns the thread-local last-error value (§3, §7). It is
// never cleared implicitly; only a successful call that documents doing so
// clears it.
func (t *Thread) LastError() Error {
	t.lastErrorMu.Lock()
	defer t.lastErrorMu.Unlock()
	return t.lastError
}

func (t *Thread) setLastError(e Error) {
	t.lastErrorMu.Lock()
	t.lastError = e
	t.lastErrorMu.Unlock()
}

func (t *Thread) clearLastError() {
	t.setLastError(ErrNone)
}

// ID returns a process-unique identifier for t, stable for its lifetime.
func (t *Thread) ID() uint64 { return t.id }

// DebugName returns the name supplied at creation, if any.
func (t *Thread) DebugName() string { return t.attr.DebugName }

func (t *Thread) String() string {
	name := t.attr.DebugName
	if name == "" {
		name = fmt.Sprintf("thread-%d", t.id)
	}
	return name
}
