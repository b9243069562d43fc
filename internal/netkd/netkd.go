// Package netkd implements the neutral socket and name-resolution
// primitives behind the root package's IPv4-only TCP/UDP façade. It knows
// nothing about threads, events, or the root package's Error type, so it
// stays import-cycle-free: the root package imports netkd, never the
// reverse.
package netkd

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"
)

// SockType selects the transport a Socket wraps.
type SockType int

const (
	SockTCP SockType = iota
	SockUDP
)

// Addr is a raw IPv4 address/port pair, independent of the root package's
// address type.
type Addr struct {
	IP   [4]byte
	Port uint16
}

func (a Addr) toNet() *net.TCPAddr {
	return &net.TCPAddr{IP: net.IPv4(a.IP[0], a.IP[1], a.IP[2], a.IP[3]), Port: int(a.Port)}
}

func (a Addr) toUDPNet() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(a.IP[0], a.IP[1], a.IP[2], a.IP[3]), Port: int(a.Port)}
}

// Socket wraps either a TCP connection (post-connect/post-accept) or a UDP
// endpoint. Before Connect/Bind complete, conn/packetConn are nil: Send and
// Recv fail with net.ErrClosed-shaped errors in that state, which the root
// package maps to NOT_CONNECTED.
type Socket struct {
	typ        SockType
	conn       net.Conn
	packetConn net.PacketConn
	bound      *net.UDPAddr
	listener   *net.TCPListener
}

// NewSocket creates an unconnected, unbound socket of the given type. This
// never talks to the kernel (unlike the original API's eager socket(2)
// call): Go's net package defers descriptor creation to Dial/Listen, so
// there is nothing to fail at this step.
func NewSocket(typ SockType) *Socket {
	return &Socket{typ: typ}
}

// Type reports the socket's transport.
func (s *Socket) Type() SockType { return s.typ }

// Bind binds a UDP socket to a local address. For a TCP socket it binds and
// listens in one step, opening a listener on addr; it does not connect.
func (s *Socket) Bind(addr Addr) error {
	if s.typ == SockUDP {
		pc, err := net.ListenUDP("udp4", addr.toUDPNet())
		if err != nil {
			return err
		}
		s.packetConn = pc
		s.bound = addr.toUDPNet()
		return nil
	}
	ln, err := net.ListenTCP("tcp4", addr.toNet())
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Connect connects a TCP socket to a remote address.
func (s *Socket) Connect(addr Addr) error {
	c, err := net.DialTimeout("tcp4", addr.toNet().String(), 10*time.Second)
	if err != nil {
		return err
	}
	s.conn = c
	return nil
}

// Send writes buf to a connected TCP socket.
func (s *Socket) Send(buf []byte) (int, error) {
	if s.conn == nil {
		return 0, net.ErrClosed
	}
	return s.conn.Write(buf)
}

// SendTo writes buf to addr over a UDP socket.
func (s *Socket) SendTo(buf []byte, addr Addr) (int, error) {
	if s.packetConn == nil {
		return 0, net.ErrClosed
	}
	return s.packetConn.WriteTo(buf, addr.toUDPNet())
}

// Recv reads from a connected TCP socket.
func (s *Socket) Recv(buf []byte) (int, error) {
	if s.conn == nil {
		return 0, net.ErrClosed
	}
	return s.conn.Read(buf)
}

// RecvFrom reads from a UDP socket, reporting the sender's address.
func (s *Socket) RecvFrom(buf []byte) (int, Addr, error) {
	if s.packetConn == nil {
		return 0, Addr{}, net.ErrClosed
	}
	n, from, err := s.packetConn.ReadFrom(buf)
	if err != nil {
		return n, Addr{}, err
	}
	udpAddr, _ := from.(*net.UDPAddr)
	var a Addr
	if udpAddr != nil {
		ip4 := udpAddr.IP.To4()
		if ip4 != nil {
			copy(a.IP[:], ip4)
		}
		a.Port = uint16(udpAddr.Port)
	}
	return n, a, nil
}

// LocalAddr reports the address a bound UDP socket or a listening TCP
// socket is bound to. It returns the zero Addr for a socket that is neither.
func (s *Socket) LocalAddr() Addr {
	var ip net.IP
	var port int
	switch {
	case s.packetConn != nil:
		udpAddr, ok := s.packetConn.LocalAddr().(*net.UDPAddr)
		if !ok {
			return Addr{}
		}
		ip, port = udpAddr.IP, udpAddr.Port
	case s.listener != nil:
		tcpAddr, ok := s.listener.Addr().(*net.TCPAddr)
		if !ok {
			return Addr{}
		}
		ip, port = tcpAddr.IP, tcpAddr.Port
	default:
		return Addr{}
	}
	var a Addr
	ip4 := ip.To4()
	if ip4 != nil {
		copy(a.IP[:], ip4)
	}
	a.Port = uint16(port)
	return a
}

// FD reports the raw file descriptor backing the socket's active
// connection, listener, or bound packet conn, for callers that want to
// drive real OS readiness notification (see internal/hostio) instead of
// blocking directly on Recv/RecvFrom.
func (s *Socket) FD() (int, error) {
	var sc syscall.Conn
	switch {
	case s.conn != nil:
		sc, _ = s.conn.(syscall.Conn)
	case s.packetConn != nil:
		sc, _ = s.packetConn.(syscall.Conn)
	case s.listener != nil:
		sc = s.listener
	}
	if sc == nil {
		return 0, fmt.Errorf("netkd: socket has no open descriptor yet")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	if err := raw.Control(func(fdv uintptr) { fd = int(fdv) }); err != nil {
		return 0, err
	}
	return fd, nil
}

// Close releases the socket's underlying descriptor(s).
func (s *Socket) Close() error {
	var firstErr error
	if s.conn != nil {
		firstErr = s.conn.Close()
	}
	if s.packetConn != nil {
		if err := s.packetConn.Close(); firstErr == nil {
			firstErr = err
		}
	}
	if s.listener != nil {
		if err := s.listener.Close(); firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LookupIPv4 resolves hostname to its IPv4 addresses, blocking the calling
// goroutine. Callers needing asynchronous resolution (as the root package's
// NameLookup does) run this on a worker goroutine themselves; netkd stays
// synchronous and thread-agnostic.
func LookupIPv4(hostname string) ([]Addr, error) {
	ips, err := net.DefaultResolver.LookupIP(context.Background(), "ip4", hostname)
	if err != nil {
		return nil, err
	}
	addrs := make([]Addr, 0, len(ips))
	for _, ip := range ips {
		ip4 := ip.To4()
		if ip4 == nil {
			continue
		}
		var a Addr
		copy(a.IP[:], ip4)
		addrs = append(addrs, a)
	}
	return addrs, nil
}
