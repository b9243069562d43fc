//go:build linux

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

type epollPoller struct {
	epfd    int
	wakeFD  int
	mu      sync.RWMutex
	entries map[int]fdEntry
	buf     [128]unix.EpollEvent
}

func newPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakeFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	p := &epollPoller{epfd: epfd, wakeFD: wakeFD, entries: make(map[int]fdEntry)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFD, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFD)}); err != nil {
		_ = unix.Close(epfd)
		_ = unix.Close(wakeFD)
		return nil, err
	}
	return p, nil
}

func (p *epollPoller) Add(fd int, ev Event, cb Callback) error {
	p.mu.Lock()
	p.entries[fd] = fdEntry{ev: ev, cb: cb}
	p.mu.Unlock()
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: toEpoll(ev), Fd: int32(fd)})
}

func (p *epollPoller) Modify(fd int, ev Event) error {
	p.mu.Lock()
	e, ok := p.entries[fd]
	if ok {
		e.ev = ev
		p.entries[fd] = e
	}
	p.mu.Unlock()
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Events: toEpoll(ev), Fd: int32(fd)})
}

func (p *epollPoller) Remove(fd int) error {
	p.mu.Lock()
	delete(p.entries, fd)
	p.mu.Unlock()
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) Wait(timeout time.Duration) (int, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(p.epfd, p.buf[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	fired := 0
	for i := 0; i < n; i++ {
		fd := int(p.buf[i].Fd)
		if fd == p.wakeFD {
			var drain [8]byte
			_, _ = unix.Read(p.wakeFD, drain[:])
			continue
		}
		p.mu.RLock()
		entry, ok := p.entries[fd]
		p.mu.RUnlock()
		if ok && entry.cb != nil {
			entry.cb(fd, fromEpoll(p.buf[i].Events))
			fired++
		}
	}
	return fired, nil
}

func (p *epollPoller) Wake() error {
	var one [8]byte
	one[0] = 1
	_, err := unix.Write(p.wakeFD, one[:])
	return err
}

func (p *epollPoller) Close() error {
	_ = unix.Close(p.wakeFD)
	return unix.Close(p.epfd)
}

func toEpoll(ev Event) uint32 {
	var out uint32
	if ev&Readable != 0 {
		out |= unix.EPOLLIN
	}
	if ev&Writable != 0 {
		out |= unix.EPOLLOUT
	}
	return out
}

func fromEpoll(flags uint32) Event {
	var ev Event
	if flags&unix.EPOLLIN != 0 {
		ev |= Readable
	}
	if flags&unix.EPOLLOUT != 0 {
		ev |= Writable
	}
	if flags&unix.EPOLLERR != 0 {
		ev |= ErrorCond
	}
	if flags&unix.EPOLLHUP != 0 {
		ev |= Hangup
	}
	return ev
}
