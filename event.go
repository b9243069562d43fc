package kd

// Kind identifies the tagged variant an Event carries (§3). Kind 0 is
// reserved: as an event's own kind it means "unset" (only true for an
// event fresh off NewEvent that hasn't been given a real kind yet); as a
// callback's kind filter it means "wildcard, matches any kind" (§4.4).
// Both readings are part of the ABI: a wildcard kind of 0 matches any
// event kind.
type Kind uint32

const (
	KindUnset Kind = iota
	KindQuit
	KindPause
	KindResume
	KindOrientation
	KindWindowClose
	KindWindowFocus
	KindWindowRedraw
	KindWindowPropertyChange
	KindTimer
	KindInputPointer
	KindInputKey
	KindInputKeyChar
	KindNameLookupComplete
	KindSocketReadable
	KindSocketWritable
	KindSocketConnectComplete
	KindSocketIncoming
)

func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindQuit:
		return "quit"
	case KindPause:
		return "pause"
	case KindResume:
		return "resume"
	case KindOrientation:
		return "orientation"
	case KindWindowClose:
		return "window_close"
	case KindWindowFocus:
		return "window_focus"
	case KindWindowRedraw:
		return "window_redraw"
	case KindWindowPropertyChange:
		return "window_property_change"
	case KindTimer:
		return "timer"
	case KindInputPointer:
		return "input_pointer"
	case KindInputKey:
		return "input_key"
	case KindInputKeyChar:
		return "input_key_char"
	case KindNameLookupComplete:
		return "name_lookup_complete"
	case KindSocketReadable:
		return "socket_readable"
	case KindSocketWritable:
		return "socket_writable"
	case KindSocketConnectComplete:
		return "socket_connect_complete"
	case KindSocketIncoming:
		return "socket_incoming"
	default:
		return "unknown"
	}
}

// PointerAxis selects which sub-index an INPUT_POINTER event reports (§3).
type PointerAxis uint8

const (
	PointerX PointerAxis = iota
	PointerY
	PointerSelect
)

// PointerPayload is the INPUT_POINTER event payload.
type PointerPayload struct {
	Axis     PointerAxis
	Value    float64 // coordinate for PointerX/PointerY
	Selected bool    // selection state for PointerSelect
}

// KeyCode identifies a canonical arrow key (§4.7 minimum input translation).
type KeyCode uint32

const (
	KeyUnknown KeyCode = iota
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// KeyPayload is the INPUT_KEY event payload.
type KeyPayload struct {
	Pressed bool
	Code    KeyCode
}

// KeyCharPayload is the INPUT_KEY_CHAR event payload.
type KeyCharPayload struct {
	Char rune
}

// NameLookupPayload is the NAME_LOOKUP_COMPLETE event payload: either a
// non-empty Addrs or a non-zero Err, never both (§6).
type NameLookupPayload struct {
	Addrs []IPv4Addr
	Err   Error
}

// WindowPropertyPayload reports which window property changed (§4.7).
type WindowPropertyPayload struct {
	Property WindowProperty
}

// Event is a tagged, timestamped record delivered to one thread's queue
// (§3). The zero value, as produced by NewEvent, has Kind KindUnset and a
// nil UserPtr; callers set Kind and Payload before posting.
//
// UserPtr identifies the logical target/originator for callback matching
// (§4.4) and must be a comparable value (a pointer, or a small value type);
// it is compared with ==, mirroring the original API's use of an opaque
// void* identity.
type Event struct {
	Timestamp int64
	Kind      Kind
	UserPtr   any
	Payload   any
}

// NewEvent allocates a zero-initialized event: Timestamp 0, Kind
// KindUnset, nil UserPtr, nil Payload (§3 "Lifecycle"). Timestamp 0 is
// later treated as "assign at post time" by Thread.Post.
func NewEvent() *Event {
	return &Event{}
}

// Free releases an event back to the caller. In this Go implementation
// the garbage collector reclaims the memory; Free exists for API parity
// with the original lifecycle (owned by poster until enqueued, then by
// the destination queue, then transferred to last_event, then freed) and
// to catch accidental reuse by zeroing the event in place.
func (e *Event) Free() {
	if e == nil {
		return
	}
	*e = Event{}
}
