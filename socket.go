package kd

import (
	"errors"
	"net"
	"syscall"

	"github.com/kdrt/kd/internal/netkd"
)

// SockType selects a Socket's transport (§6 "Socket collaborator").
type SockType int

const (
	SockTCP SockType = iota
	SockUDP
)

// SockAddr is an IPv4 address/port pair, the only address shape the socket
// collaborator accepts (§6).
type SockAddr struct {
	Addr IPv4Addr
	Port uint16
}

func (a SockAddr) toNetkd() netkd.Addr {
	return netkd.Addr{IP: a.Addr, Port: a.Port}
}

// Socket is a TCP or UDP endpoint (§6). A UDP socket is considered
// readable immediately after creation; a TCP socket is considered readable
// only after a successful Bind. Both post a SOCKET_READABLE event to the
// creating thread at that point.
type Socket struct {
	sock    *netkd.Socket
	typ     SockType
	userPtr any
	creator *Thread
}

// NewSocket creates a Socket of the given type, attributed to the calling
// thread. UDP sockets immediately post SOCKET_READABLE; TCP sockets post it
// only once Bind succeeds (§6).
func NewSocket(typ SockType, userPtr any) (*Socket, Error) {
	creator := Self()
	if creator == nil {
		return nil, ErrInvalid
	}

	s := &Socket{
		sock:    netkd.NewSocket(netkd.SockType(typ)),
		typ:     typ,
		userPtr: userPtr,
		creator: creator,
	}

	if typ == SockUDP {
		s.postReadable()
	}
	return s, ErrNone
}

func (s *Socket) postReadable() {
	ev, ok := s.creator.newTranslatedEvent(KindSocketReadable, s.userPtr)
	if !ok {
		s.creator.setLastError(ErrOutOfMemory)
		return
	}
	ev.Payload = s
	s.creator.emitTranslated(ev)
}

// LocalAddr reports the address a bound UDP socket or a bound (listening)
// TCP socket is bound to, or the zero SockAddr before Bind.
func (s *Socket) LocalAddr() SockAddr {
	a := s.sock.LocalAddr()
	return SockAddr{Addr: a.IP, Port: a.Port}
}

// Close releases the socket's underlying descriptor(s).
func (s *Socket) Close() Error {
	if err := s.sock.Close(); err != nil {
		return mapNetError(err)
	}
	return ErrNone
}

// Bind binds the socket to a local address. For a TCP socket, success
// additionally posts SOCKET_READABLE to the creating thread (§6).
func (s *Socket) Bind(addr SockAddr) Error {
	if err := s.sock.Bind(addr.toNetkd()); err != nil {
		return mapNetError(err)
	}
	if s.typ == SockTCP {
		s.postReadable()
	}
	return ErrNone
}

// Connect connects a TCP socket to a remote address.
func (s *Socket) Connect(addr SockAddr) Error {
	if err := s.sock.Connect(addr.toNetkd()); err != nil {
		return mapNetError(err)
	}
	return ErrNone
}

// Send writes buf to a connected TCP socket.
func (s *Socket) Send(buf []byte) (int, Error) {
	n, err := s.sock.Send(buf)
	if err != nil {
		return n, mapNetError(err)
	}
	return n, ErrNone
}

// SendTo writes buf to addr over a UDP socket.
func (s *Socket) SendTo(buf []byte, addr SockAddr) (int, Error) {
	n, err := s.sock.SendTo(buf, addr.toNetkd())
	if err != nil {
		return n, mapNetError(err)
	}
	return n, ErrNone
}

// Recv reads from a connected TCP socket.
func (s *Socket) Recv(buf []byte) (int, Error) {
	n, err := s.sock.Recv(buf)
	if err != nil {
		return n, mapNetError(err)
	}
	return n, ErrNone
}

// RecvFrom reads from a UDP socket, reporting the sender's address.
func (s *Socket) RecvFrom(buf []byte) (int, SockAddr, Error) {
	n, from, err := s.sock.RecvFrom(buf)
	if err != nil {
		return n, SockAddr{}, mapNetError(err)
	}
	return n, SockAddr{Addr: from.IP, Port: from.Port}, ErrNone
}

// mapNetError maps a net package error to a canonical Error kind (§7),
// following the same host-errno-to-canonical-kind mapping approach the
// original API applies via kdSetErrorPlatformVEN.
func mapNetError(err error) Error {
	if err == nil {
		return ErrNone
	}
	if errors.Is(err, net.ErrClosed) {
		return ErrNotConnected
	}
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.EADDRINUSE:
			return ErrAddrInUse
		case syscall.EADDRNOTAVAIL:
			return ErrAddrUnavail
		case syscall.EAFNOSUPPORT:
			return ErrAFUnsupported
		case syscall.ECONNREFUSED:
			return ErrConnRefused
		case syscall.ECONNRESET:
			return ErrConnReset
		case syscall.EHOSTUNREACH:
			return ErrHostUnreachable
		case syscall.ETIMEDOUT:
			return ErrTimedOut
		case syscall.EISCONN:
			return ErrIsConnected
		case syscall.ENOTCONN:
			return ErrNotConnected
		case syscall.EAGAIN:
			return ErrTryAgain
		case syscall.EACCES:
			return ErrAccess
		case syscall.EINVAL:
			return ErrInvalid
		case syscall.ENOMEM:
			return ErrOutOfMemory
		}
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimedOut
	}
	return ErrIO
}
