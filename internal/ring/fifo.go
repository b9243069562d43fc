// Package ring provides a mutex-protected doubly linked FIFO/deque that backs
// each thread's event queue (C6), and through it the timer worker's queue
// (C7). The root package uses it only internally; it does not export a FIFO
// type of its own.
package ring

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// node is an owned link in the queue's chain. The payload is type-erased;
// the queue never inspects or frees it.
type node struct {
	val        any
	prev, next *node
}

// FIFO is a mutex-protected doubly linked queue supporting push/pop at
// either end in O(1), with an O(1) cached size.
//
// All operations are safe to call concurrently from any goroutine. pop on
// an empty queue returns (nil, false) without blocking.
type FIFO struct {
	mu         sync.Mutex
	_          cpu.CacheLinePad
	head, tail *node
	size       int
}

// New creates an empty FIFO. capacityHint is advisory only: a plain linked
// list has no fixed capacity to pre-allocate, so the hint is accepted for
// API compatibility with callers that size it from workload knowledge and
// otherwise ignored.
func New(capacityHint int) *FIFO {
	_ = capacityHint
	return &FIFO{}
}

// Size returns the number of elements currently queued.
func (q *FIFO) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// PushHead inserts val at the front of the queue.
func (q *FIFO) PushHead(val any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := &node{val: val, next: q.head}
	if q.head != nil {
		q.head.prev = n
	}
	q.head = n
	if q.tail == nil {
		q.tail = n
	}
	q.size++
}

// PushTail inserts val at the back of the queue.
func (q *FIFO) PushTail(val any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := &node{val: val, prev: q.tail}
	if q.tail != nil {
		q.tail.next = n
	}
	q.tail = n
	if q.head == nil {
		q.head = n
	}
	q.size++
}

// PopHead removes and returns the element at the front of the queue.
// Returns (nil, false) without blocking if the queue is empty.
func (q *FIFO) PopHead() (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == nil {
		return nil, false
	}
	n := q.head
	q.head = n.next
	if q.head != nil {
		q.head.prev = nil
	} else {
		q.tail = nil
	}
	q.size--
	return n.val, true
}

// PopTail removes and returns the element at the back of the queue.
// Returns (nil, false) without blocking if the queue is empty.
func (q *FIFO) PopTail() (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tail == nil {
		return nil, false
	}
	n := q.tail
	q.tail = n.prev
	if q.tail != nil {
		q.tail.next = nil
	} else {
		q.head = nil
	}
	q.size--
	return n.val, true
}
