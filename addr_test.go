package kd

import "testing"

func TestIPv4Addr_String(t *testing.T) {
	a := IPv4Addr{192, 168, 1, 42}
	if got, want := a.String(), "192.168.1.42"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestIPv4Addr_IsZero(t *testing.T) {
	if !(IPv4Addr{}).IsZero() {
		t.Fatal("IsZero() = false for the zero value, want true")
	}
	if (IPv4Addr{127, 0, 0, 1}).IsZero() {
		t.Fatal("IsZero() = true for 127.0.0.1, want false")
	}
}
