package kd

import (
	"sync"

	"github.com/kdrt/kd/internal/hostio"
)

// IOPoller is a HostSource that reports genuine OS-level readiness for
// sockets registered with Watch, instead of the eager post-on-bind
// shortcut NewSocket takes by default. Registration is level-triggered: each
// Drive while a watched descriptor stays readable reports it again. A caller
// that wants readiness-driven SOCKET_READABLE delivery (for example a TCP socket
// carrying a long-lived connection) registers it on its thread with
// RegisterHostSource and drives it once per loop iteration.
type IOPoller struct {
	poller hostio.Poller

	mu    sync.Mutex
	fired []*Socket
}

// NewIOPoller constructs an IOPoller backed by the host's native
// readiness mechanism (epoll, kqueue, or IOCP).
func NewIOPoller() (*IOPoller, Error) {
	p, err := hostio.New()
	if err != nil {
		return nil, ErrIO
	}
	return &IOPoller{poller: p}, ErrNone
}

// Watch begins monitoring sock's underlying descriptor for readability.
func (p *IOPoller) Watch(sock *Socket) Error {
	fd, err := sock.sock.FD()
	if err != nil {
		return ErrNotConnected
	}
	if err := p.poller.Add(fd, hostio.Readable, func(_ int, _ hostio.Event) {
		p.mu.Lock()
		p.fired = append(p.fired, sock)
		p.mu.Unlock()
	}); err != nil {
		return mapNetError(err)
	}
	return ErrNone
}

// Unwatch stops monitoring sock.
func (p *IOPoller) Unwatch(sock *Socket) Error {
	fd, err := sock.sock.FD()
	if err != nil {
		return ErrNotConnected
	}
	if err := p.poller.Remove(fd); err != nil {
		return mapNetError(err)
	}
	return ErrNone
}

// Drive checks for readiness that has already arrived, without blocking.
// Call it once per loop iteration (e.g. right before Wait/Pump) to keep
// the next Poll call current.
func (p *IOPoller) Drive() {
	p.poller.Wait(0)
}

// Poll implements HostSource.
func (p *IOPoller) Poll(emit func(*Event) bool) {
	p.mu.Lock()
	fired := p.fired
	p.fired = nil
	p.mu.Unlock()

	for i, sock := range fired {
		ev, ok := sock.creator.newTranslatedEvent(KindSocketReadable, sock.userPtr)
		if !ok {
			sock.creator.setLastError(ErrOutOfMemory)
			continue
		}
		ev.Payload = sock
		if !emit(ev) {
			p.mu.Lock()
			p.fired = append(fired[i+1:], p.fired...)
			p.mu.Unlock()
			break
		}
	}
}

// Close releases the poller's OS handle.
func (p *IOPoller) Close() Error {
	if err := p.poller.Close(); err != nil {
		return ErrIO
	}
	return ErrNone
}
