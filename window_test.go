package kd

import "testing"

func withWindowReset(t *testing.T) {
	t.Helper()
	windowMu.Lock()
	theWindow = nil
	windowMu.Unlock()
	t.Cleanup(func() {
		windowMu.Lock()
		theWindow = nil
		windowMu.Unlock()
	})
}

func TestCreateWindow_SecondCallFailsWhileFirstLives(t *testing.T) {
	withWindowReset(t)

	th := Spawn(nil, func(arg any) any {
		w1, kerr := CreateWindow(nil, nil, nil)
		if kerr != ErrNone {
			t.Errorf("first CreateWindow() error = %v, want ErrNone", kerr)
		}
		_, kerr = CreateWindow(nil, nil, nil)
		if kerr != ErrPerm {
			t.Errorf("second CreateWindow() error = %v, want ErrPerm", kerr)
		}
		w1.Destroy()
		return nil
	}, nil)
	th.Join()
}

func TestCreateWindow_AfterDestroy_Succeeds(t *testing.T) {
	withWindowReset(t)

	th := Spawn(nil, func(arg any) any {
		w1, _ := CreateWindow(nil, nil, nil)
		if kerr := w1.Destroy(); kerr != ErrNone {
			t.Errorf("Destroy() error = %v, want ErrNone", kerr)
		}
		_, kerr := CreateWindow(nil, nil, nil)
		if kerr != ErrNone {
			t.Errorf("CreateWindow() after Destroy() error = %v, want ErrNone", kerr)
		}
		return nil
	}, nil)
	th.Join()
}

func TestWindow_Destroy_OnlyCreatorMaySucceed(t *testing.T) {
	withWindowReset(t)

	var w *Window
	creator := Spawn(nil, func(arg any) any {
		w, _ = CreateWindow(nil, nil, nil)
		return nil
	}, nil)
	creator.Join()

	other := Spawn(nil, func(arg any) any {
		return w.Destroy()
	}, nil)
	retval, _ := other.Join()
	if retval.(Error) != ErrInvalid {
		t.Fatalf("Destroy() from non-creator = %v, want ErrInvalid", retval)
	}

	windowMu.Lock()
	stillAlive := theWindow == w
	windowMu.Unlock()
	if !stillAlive {
		t.Fatal("window should still be alive after a non-creator's failed Destroy()")
	}
}

func TestWindow_Realize_OnlyCreatorMaySucceed(t *testing.T) {
	withWindowReset(t)

	var w *Window
	creator := Spawn(nil, func(arg any) any {
		w, _ = CreateWindow(nil, nil, nil)
		return nil
	}, nil)
	creator.Join()

	other := Spawn(nil, func(arg any) any {
		return w.Realize("native")
	}, nil)
	retval, _ := other.Join()
	if retval.(Error) != ErrInvalid {
		t.Fatalf("Realize() from non-creator = %v, want ErrInvalid", retval)
	}
	if w.NativeHandle() != nil {
		t.Fatal("NativeHandle() should remain nil after a failed Realize()")
	}
}

func TestWindow_SetSize_EnqueuesPropertyChangeEvent(t *testing.T) {
	withWindowReset(t)

	th := Spawn(nil, func(arg any) any {
		w, _ := CreateWindow(nil, nil, "up")
		w.SetSize(640, 480)

		self := Self()
		ev, kerr := self.Wait(-1)
		if kerr != ErrNone {
			t.Errorf("Wait() error = %v, want ErrNone", kerr)
			return nil
		}
		if ev.Kind != KindWindowPropertyChange {
			t.Errorf("ev.Kind = %v, want KindWindowPropertyChange", ev.Kind)
		}
		payload, ok := ev.Payload.(WindowPropertyPayload)
		if !ok || payload.Property != WindowPropertySize {
			t.Errorf("ev.Payload = %+v, want WindowPropertyPayload{Property: WindowPropertySize}", ev.Payload)
		}

		width, height := w.Size()
		if width != 640 || height != 480 {
			t.Errorf("Size() = (%d, %d), want (640, 480)", width, height)
		}
		return nil
	}, nil)
	th.Join()
}

func TestWindowSource_PointerButton_TranslatesToSelectAxis(t *testing.T) {
	withWindowReset(t)

	th := Spawn(nil, func(arg any) any {
		w, _ := CreateWindow(nil, nil, nil)
		src := NewWindowSource(w)
		self := Self()
		self.RegisterHostSource(src)

		src.Push(HostMessage{Kind: HostPointerButton, PointerDown: true})
		self.Pump()

		ev, kerr := self.Wait(-1)
		if kerr != ErrNone {
			t.Errorf("Wait() error = %v, want ErrNone", kerr)
			return nil
		}
		if ev.Kind != KindInputPointer {
			t.Errorf("ev.Kind = %v, want KindInputPointer", ev.Kind)
		}
		payload := ev.Payload.(PointerPayload)
		if payload.Axis != PointerSelect || !payload.Selected {
			t.Errorf("payload = %+v, want Axis=PointerSelect Selected=true", payload)
		}
		return nil
	}, nil)
	th.Join()
}

func TestWindowSource_PointerMotion_TranslatesToXThenY(t *testing.T) {
	withWindowReset(t)

	th := Spawn(nil, func(arg any) any {
		w, _ := CreateWindow(nil, nil, nil)
		src := NewWindowSource(w)
		self := Self()
		self.RegisterHostSource(src)

		src.Push(HostMessage{Kind: HostPointerMotion, PointerX: 1, PointerY: 2})
		self.Pump()

		evX, _ := self.Wait(-1)
		evY, _ := self.Wait(-1)

		px := evX.Payload.(PointerPayload)
		py := evY.Payload.(PointerPayload)
		if px.Axis != PointerX || px.Value != 1 {
			t.Errorf("first event = %+v, want Axis=PointerX Value=1", px)
		}
		if py.Axis != PointerY || py.Value != 2 {
			t.Errorf("second event = %+v, want Axis=PointerY Value=2", py)
		}
		return nil
	}, nil)
	th.Join()
}

func TestWindowSource_HostClose_TranslatesToQuit(t *testing.T) {
	withWindowReset(t)

	th := Spawn(nil, func(arg any) any {
		w, _ := CreateWindow(nil, nil, nil)
		src := NewWindowSource(w)
		self := Self()
		self.RegisterHostSource(src)

		src.Push(HostMessage{Kind: HostClose})
		self.Pump()

		ev, _ := self.Wait(-1)
		if ev.Kind != KindQuit {
			t.Errorf("ev.Kind = %v, want KindQuit", ev.Kind)
		}
		return nil
	}, nil)
	th.Join()
}
