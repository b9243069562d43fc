//go:build linux || darwin

package hostio

import (
	"net"
	"testing"
	"time"
)

func TestPoller_FiresOnReadable(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	server, err := ln.Accept()
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	defer server.Close()

	fd, release, err := connFD(server)
	if err != nil {
		t.Fatalf("connFD() error = %v", err)
	}
	defer release()

	fired := make(chan Event, 1)
	if err := p.Add(fd, Readable, func(_ int, ev Event) { fired <- ev }); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if _, err := client.Write([]byte("hi")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	n, err := p.Wait(2 * time.Second)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if n == 0 {
		t.Fatal("Wait() reported no fired callbacks")
	}
	select {
	case ev := <-fired:
		if ev&Readable == 0 {
			t.Fatalf("fired event = %v, want Readable set", ev)
		}
	default:
		t.Fatal("callback was not invoked despite Wait() reporting a fire")
	}
}

func TestPoller_Wake_UnblocksWait(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	done := make(chan struct{})
	go func() {
		p.Wait(5 * time.Second)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := p.Wake(); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after Wake()")
	}
}
