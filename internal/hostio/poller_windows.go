//go:build windows

package hostio

import (
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

type fdEntry struct {
	ev Event
	cb Callback
}

// iocpPoller wraps an I/O completion port. Unlike epoll/kqueue, IOCP
// reports completions rather than readiness; registering a handle only
// associates it with the port, actual overlapped reads/writes are issued
// by the caller and the completion callback is invoked once they finish.
type iocpPoller struct {
	iocp windows.Handle
	mu   sync.RWMutex
	fds  map[int]fdEntry
}

func newPoller() (Poller, error) {
	iocp, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	return &iocpPoller{iocp: iocp, fds: make(map[int]fdEntry)}, nil
}

func (p *iocpPoller) Add(fd int, ev Event, cb Callback) error {
	if _, err := windows.CreateIoCompletionPort(windows.Handle(fd), p.iocp, uintptr(fd), 0); err != nil {
		return err
	}
	p.mu.Lock()
	p.fds[fd] = fdEntry{ev: ev, cb: cb}
	p.mu.Unlock()
	return nil
}

func (p *iocpPoller) Modify(fd int, ev Event) error {
	p.mu.Lock()
	e, ok := p.fds[fd]
	if ok {
		e.ev = ev
		p.fds[fd] = e
	}
	p.mu.Unlock()
	return nil
}

func (p *iocpPoller) Remove(fd int) error {
	p.mu.Lock()
	delete(p.fds, fd)
	p.mu.Unlock()
	return nil
}

func (p *iocpPoller) Wait(timeout time.Duration) (int, error) {
	var t *uint32
	if timeout >= 0 {
		ms := uint32(timeout / time.Millisecond)
		t = &ms
	}
	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped
	err := windows.GetQueuedCompletionStatus(p.iocp, &bytes, &key, &overlapped, t)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == windows.WAIT_TIMEOUT {
			return 0, nil
		}
		return 0, err
	}
	if overlapped == nil {
		// A nil overlapped packet with no error is our own wake-up.
		return 0, nil
	}
	p.mu.RLock()
	entry, ok := p.fds[int(key)]
	p.mu.RUnlock()
	if ok && entry.cb != nil {
		entry.cb(int(key), Readable)
		return 1, nil
	}
	return 0, nil
}

func (p *iocpPoller) Wake() error {
	return windows.PostQueuedCompletionStatus(p.iocp, 0, 0, nil)
}

func (p *iocpPoller) Close() error {
	return windows.CloseHandle(p.iocp)
}
