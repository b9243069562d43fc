//go:build linux || darwin

package hostio

import (
	"fmt"
	"net"
	"syscall"
)

// connFD extracts the raw file descriptor backing conn. release must be
// called once the caller is done driving the fd directly through a
// Poller, since the returned fd aliases conn's own descriptor.
func connFD(conn net.Conn) (fd int, release func(), err error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return 0, nil, fmt.Errorf("hostio: %T does not support raw fd access", conn)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, nil, err
	}
	var dup int
	cerr := raw.Control(func(fdv uintptr) {
		dup, err = syscall.Dup(int(fdv))
	})
	if cerr != nil {
		return 0, nil, cerr
	}
	if err != nil {
		return 0, nil, err
	}
	return dup, func() { syscall.Close(dup) }, nil
}
