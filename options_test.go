package kd

import "testing"

func TestResolveOptions_DefaultsToNoOpLoggerAndSystemClock(t *testing.T) {
	o := resolveOptions(nil)
	if o.logger == nil {
		t.Fatal("resolveOptions(nil).logger is nil, want a default no-op logger")
	}
	if _, ok := o.clock.(systemClock); !ok {
		t.Fatalf("resolveOptions(nil).clock = %T, want systemClock", o.clock)
	}
	if o.allocFailHook != nil {
		t.Fatal("resolveOptions(nil).allocFailHook should be nil by default")
	}
}

func TestResolveOptions_AppliesEachOptionInOrder(t *testing.T) {
	fc := newFakeClock()
	called := false
	o := resolveOptions([]Option{
		WithLogger(NewNoOpLogger()),
		WithQueueCapacityHint(64),
		WithStrictDispatchOrder(true),
		WithClock(fc),
		WithAllocFailureHook(func() bool { called = true; return false }),
	})

	if o.queueCapacityHint != 64 {
		t.Fatalf("queueCapacityHint = %d, want 64", o.queueCapacityHint)
	}
	if !o.strictDispatch {
		t.Fatal("strictDispatch = false, want true")
	}
	if o.clock != Clock(fc) {
		t.Fatal("clock was not overridden by WithClock")
	}
	o.allocFailHook()
	if !called {
		t.Fatal("allocFailHook installed by WithAllocFailureHook was not the one invoked")
	}
}

func TestResolveOptions_NilOptionInSliceIsSkipped(t *testing.T) {
	o := resolveOptions([]Option{nil, WithQueueCapacityHint(8), nil})
	if o.queueCapacityHint != 8 {
		t.Fatalf("queueCapacityHint = %d, want 8", o.queueCapacityHint)
	}
}
