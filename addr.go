package kd

import "fmt"

// IPv4Addr is a bare IPv4 address, the only address family the socket and
// name-lookup collaborators accept (§6: "The address family accepted is
// IPv4 only").
type IPv4Addr [4]byte

func (a IPv4Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// IsZero reports whether a is the unspecified address (0.0.0.0).
func (a IPv4Addr) IsZero() bool {
	return a == IPv4Addr{}
}
