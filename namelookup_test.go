package kd

import (
	"testing"
	"time"
)

func TestNameLookup_Loopback_ResolvesAddresses(t *testing.T) {
	done := make(chan struct{})
	th := Spawn(nil, func(arg any) any {
		self := Self()
		if kerr := NameLookup("localhost", "p"); kerr != ErrNone {
			t.Errorf("NameLookup() error = %v, want ErrNone", kerr)
			close(done)
			return nil
		}

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			ev, kerr := self.Wait((10 * time.Millisecond).Nanoseconds())
			if kerr != ErrNone {
				continue
			}
			if ev.Kind != KindNameLookupComplete {
				continue
			}
			payload := ev.Payload.(NameLookupPayload)
			if payload.Err != ErrNone {
				t.Errorf("payload.Err = %v, want ErrNone", payload.Err)
			}
			if len(payload.Addrs) == 0 {
				t.Error("payload.Addrs is empty, want at least one address for localhost")
			}
			if ev.UserPtr != "p" {
				t.Errorf("ev.UserPtr = %v, want %q", ev.UserPtr, "p")
			}
			close(done)
			return nil
		}
		t.Error("NAME_LOOKUP_COMPLETE event never arrived")
		close(done)
		return nil
	}, nil)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("test timed out")
	}
	th.Join()
}

func TestNameLookup_OutsideAThread_Fails(t *testing.T) {
	if kerr := NameLookup("localhost", nil); kerr != ErrInvalid {
		t.Fatalf("NameLookup() outside a Thread: error = %v, want ErrInvalid", kerr)
	}
}
