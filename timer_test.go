package kd

import (
	"testing"
	"time"
)

func TestSetTimer_OneShot_FiresExactlyOnce(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Run(func(args []string) int {
			self := Self()
			tm, kerr := SetTimer(20*time.Millisecond, TimerOneShot, "p")
			if kerr != ErrNone {
				t.Errorf("SetTimer() error = %v", kerr)
			}
			_ = tm

			count := 0
			for i := 0; i < 2; i++ {
				ev, kerr := self.Wait(50 * time.Millisecond.Nanoseconds())
				if kerr == ErrNone && ev.Kind == KindTimer {
					count++
				}
			}
			if count != 1 {
				t.Errorf("observed %d TIMER events, want 1", count)
			}
			close(done)
			return 0
		})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("test timed out")
	}
}

func TestSetTimer_MustBeCalledFromAThread(t *testing.T) {
	if _, kerr := SetTimer(time.Second, TimerOneShot, nil); kerr != ErrInvalid {
		t.Fatalf("SetTimer() outside a Thread: error = %v, want ErrInvalid", kerr)
	}
}

func TestTimer_Cancel_OnlyCreatorMayCancel(t *testing.T) {
	th := Spawn(nil, func(arg any) any {
		tm, kerr := SetTimer(time.Hour, TimerOneShot, nil)
		if kerr != ErrNone {
			t.Errorf("SetTimer() error = %v", kerr)
			return nil
		}
		return tm
	}, nil)
	retval, kerr := th.Join()
	if kerr != ErrNone {
		t.Fatalf("Join() error = %v", kerr)
	}
	tm := retval.(*Timer)

	// Called from the test goroutine, which never Spawned a Thread: not
	// the creator.
	if kerr := tm.Cancel(); kerr != ErrInvalid {
		t.Fatalf("Cancel() from a non-creator thread: error = %v, want ErrInvalid", kerr)
	}
}

func TestSetTimer_PeriodicCadence_StopsAfterCancel(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Run(func(args []string) int {
			self := Self()
			tm, kerr := SetTimer(15*time.Millisecond, TimerPeriodicMinimum, "p")
			if kerr != ErrNone {
				t.Errorf("SetTimer() error = %v", kerr)
			}

			fires := 0
			deadline := time.Now().Add(100 * time.Millisecond)
			for time.Now().Before(deadline) {
				ev, kerr := self.Wait((5 * time.Millisecond).Nanoseconds())
				if kerr == ErrNone && ev.Kind == KindTimer {
					if ev.UserPtr != "p" {
						t.Errorf("ev.UserPtr = %v, want %q", ev.UserPtr, "p")
					}
					fires++
				}
			}
			if fires < 3 {
				t.Errorf("fires = %d, want at least 3 in 100ms at a 15ms interval", fires)
			}

			if kerr := tm.Cancel(); kerr != ErrNone {
				t.Errorf("Cancel() error = %v, want ErrNone", kerr)
			}

			// Drain anything already in flight, then confirm silence.
			quiet := time.Now().Add(60 * time.Millisecond)
			for time.Now().Before(quiet) {
				ev, kerr := self.Wait((5 * time.Millisecond).Nanoseconds())
				if kerr == ErrNone && ev.Kind == KindTimer {
					t.Error("observed a TIMER event after Cancel() returned")
				}
			}

			close(done)
			return 0
		})
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("test timed out")
	}
}
