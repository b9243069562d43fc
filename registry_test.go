package kd

import "testing"

func TestCallbackRegistry_MatchesFirstInsertionOrder(t *testing.T) {
	r := newCallbackRegistry()

	var fired string
	r.install(func(ev *Event) { fired = "specific" }, KindPause, "a")
	r.install(func(ev *Event) { fired = "wildcard" }, KindUnset, "a")

	ev := &Event{Kind: KindPause, UserPtr: "a"}
	cb := r.match(ev)
	cb(ev)

	if fired != "specific" {
		t.Fatalf("fired = %q, want %q (earlier insertion wins)", fired, "specific")
	}
}

func TestCallbackRegistry_WildcardMatchesAnyKind(t *testing.T) {
	r := newCallbackRegistry()

	var fired string
	r.install(func(ev *Event) { fired = "wildcard" }, KindUnset, "a")

	ev := &Event{Kind: KindPause, UserPtr: "a"}
	cb := r.match(ev)
	cb(ev)

	if fired != "wildcard" {
		t.Fatalf("fired = %q, want %q", fired, "wildcard")
	}
}

func TestCallbackRegistry_UserPtrMustMatch(t *testing.T) {
	r := newCallbackRegistry()
	r.install(func(ev *Event) {}, KindPause, "a")

	ev := &Event{Kind: KindPause, UserPtr: "b"}
	if cb := r.match(ev); cb != nil {
		t.Fatal("match() should be nil for a different UserPtr")
	}
}

func TestCallbackRegistry_NilFnRemoves(t *testing.T) {
	r := newCallbackRegistry()
	r.install(func(ev *Event) {}, KindPause, nil)
	if r.len() != 1 {
		t.Fatalf("len() = %d, want 1", r.len())
	}
	r.install(nil, KindPause, nil)
	if r.len() != 0 {
		t.Fatalf("len() = %d, want 0", r.len())
	}
}

func TestCallbackRegistry_RemovingUnknownKeyIsANoop(t *testing.T) {
	r := newCallbackRegistry()
	r.install(nil, KindPause, "missing")
	if r.len() != 0 {
		t.Fatalf("len() = %d, want 0", r.len())
	}
}
