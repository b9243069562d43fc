package kd

import "sync"

// Mutex is a non-recursive mutual exclusion lock (§4.2). Double-locking by
// the same goroutine deadlocks. Go's sync.Mutex already has exactly this
// contract, so it is used directly rather than reimplemented.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex creates a Mutex. The spec allows OUT_OF_MEMORY on create; this
// can never happen in Go (no separate OS allocation step), so NewMutex has
// no error return.
func NewMutex() *Mutex { return &Mutex{} }

func (m *Mutex) Lock()   { m.mu.Lock() }
func (m *Mutex) Unlock() { m.mu.Unlock() }

// Cond is a condition variable paired with a Mutex (§4.2). Wait releases
// the mutex and re-acquires it atomically on wake, exactly like
// sync.Cond; Signal wakes at least one waiter, Broadcast wakes all.
type Cond struct {
	cond *sync.Cond
	l    *Mutex
}

// NewCond creates a Cond paired with l.
func NewCond(l *Mutex) *Cond {
	return &Cond{cond: sync.NewCond(&l.mu), l: l}
}

// Wait releases l and blocks until Signal or Broadcast, then re-acquires
// l before returning. l must be held by the caller.
func (c *Cond) Wait() { c.cond.Wait() }

// Signal wakes at least one goroutine blocked in Wait, if any.
func (c *Cond) Signal() { c.cond.Signal() }

// Broadcast wakes all goroutines blocked in Wait.
func (c *Cond) Broadcast() { c.cond.Broadcast() }

// Semaphore is a counting semaphore (§4.2): Wait blocks while the counter
// is zero and decrements it otherwise; Post increments the counter and
// wakes one waiter.
type Semaphore struct {
	mu    Mutex
	cond  *Cond
	count uint
}

// NewSemaphore creates a Semaphore with the given initial count.
func NewSemaphore(initial uint) *Semaphore {
	s := &Semaphore{count: initial}
	s.cond = NewCond(&s.mu)
	return s
}

// Wait blocks until the counter is non-zero, then decrements it.
func (s *Semaphore) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
}

// Post increments the counter and wakes one waiter.
func (s *Semaphore) Post() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

// Once invokes a zero-argument routine at most once across all goroutines;
// subsequent calls return after the routine has completed (§4.2). It
// backs the process-wide TLS-slot allocation performed once at bootstrap.
type Once struct {
	once sync.Once
}

// Do runs fn if and only if this is the first call to Do on o.
func (o *Once) Do(fn func()) { o.once.Do(fn) }
