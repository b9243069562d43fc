package kd

import (
	"errors"

	"github.com/kdrt/kd/internal/netkd"
)

// NameLookup resolves hostname asynchronously: it spawns a detached worker
// thread that performs the lookup and posts a NAME_LOOKUP_COMPLETE event to
// the calling thread with either the resolved addresses or a canonical
// error kind, never both (§6 "Name lookup collaborator").
//
// NameLookup itself returns immediately; ErrInvalid indicates the calling
// goroutine is not a Thread (so there is nowhere to post the result).
func NameLookup(hostname string, userPtr any) Error {
	destination := Self()
	if destination == nil {
		return ErrInvalid
	}

	Spawn(&ThreadAttr{DetachState: Detached, DebugName: "name-lookup"}, func(arg any) any {
		runNameLookupWorker(destination, hostname, userPtr)
		return nil
	}, nil)

	return ErrNone
}

func runNameLookupWorker(destination *Thread, hostname string, userPtr any) {
	addrs, err := netkd.LookupIPv4(hostname)

	payload := NameLookupPayload{}
	if err != nil {
		payload.Err = ErrHostNotFound
	} else {
		kdAddrs := make([]IPv4Addr, len(addrs))
		for i, a := range addrs {
			kdAddrs[i] = IPv4Addr(a.IP)
		}
		payload.Addrs = kdAddrs
	}

	ev := NewEvent()
	ev.Kind = KindNameLookupComplete
	ev.UserPtr = userPtr
	ev.Payload = payload

	self := Self()
	if self == nil {
		raiseFault("kdNameLookup", errors.New("name-lookup worker goroutine is not registered as a thread"))
	}
	self.PostTo(destination, ev)
}
