//go:build darwin

package hostio

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type fdEntry struct {
	ev Event
	cb Callback
}

type kqueuePoller struct {
	kq      int
	wakeR   int
	wakeW   int
	mu      sync.RWMutex
	entries map[int]fdEntry
	buf     [128]unix.Kevent_t
}

func newPoller() (Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	fds := make([]int, 2)
	if err := unix.Pipe(fds); err != nil {
		_ = unix.Close(kq)
		return nil, err
	}
	p := &kqueuePoller{kq: kq, wakeR: fds[0], wakeW: fds[1], entries: make(map[int]fdEntry)}
	ev := unix.Kevent_t{Ident: uint64(p.wakeR), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_ENABLE}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		_ = unix.Close(kq)
		_ = unix.Close(p.wakeR)
		_ = unix.Close(p.wakeW)
		return nil, err
	}
	return p, nil
}

func (p *kqueuePoller) Add(fd int, ev Event, cb Callback) error {
	p.mu.Lock()
	p.entries[fd] = fdEntry{ev: ev, cb: cb}
	p.mu.Unlock()
	return p.apply(fd, ev, unix.EV_ADD|unix.EV_ENABLE)
}

func (p *kqueuePoller) Modify(fd int, ev Event) error {
	p.mu.Lock()
	e, ok := p.entries[fd]
	if ok {
		e.ev = ev
		p.entries[fd] = e
	}
	p.mu.Unlock()
	return p.apply(fd, ev, unix.EV_ADD|unix.EV_ENABLE)
}

func (p *kqueuePoller) Remove(fd int) error {
	p.mu.Lock()
	delete(p.entries, fd)
	p.mu.Unlock()
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	return err
}

func (p *kqueuePoller) apply(fd int, ev Event, flags uint16) error {
	var changes []unix.Kevent_t
	if ev&Readable != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flags})
	}
	if ev&Writable != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags})
	}
	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	return err
}

func (p *kqueuePoller) Wait(timeout time.Duration) (int, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}
	n, err := unix.Kevent(p.kq, nil, p.buf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	fired := 0
	for i := 0; i < n; i++ {
		fd := int(p.buf[i].Ident)
		if fd == p.wakeR {
			var drain [64]byte
			_, _ = unix.Read(p.wakeR, drain[:])
			continue
		}
		p.mu.RLock()
		entry, ok := p.entries[fd]
		p.mu.RUnlock()
		if !ok || entry.cb == nil {
			continue
		}
		var ev Event
		switch p.buf[i].Filter {
		case unix.EVFILT_READ:
			ev = Readable
		case unix.EVFILT_WRITE:
			ev = Writable
		}
		if p.buf[i].Flags&unix.EV_EOF != 0 {
			ev |= Hangup
		}
		entry.cb(fd, ev)
		fired++
	}
	return fired, nil
}

func (p *kqueuePoller) Wake() error {
	_, err := unix.Write(p.wakeW, []byte{1})
	return err
}

func (p *kqueuePoller) Close() error {
	_ = unix.Close(p.wakeR)
	_ = unix.Close(p.wakeW)
	return unix.Close(p.kq)
}
