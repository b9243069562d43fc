package kd

import "sync"

// WindowProperty identifies which settable property of the window changed,
// reported in a WINDOW_PROPERTY_CHANGE event (§4.7).
type WindowProperty uint32

const (
	WindowPropertyUnset WindowProperty = iota
	WindowPropertySize
	WindowPropertyCaption
)

// NativeHandle is the host-defined shape the window bridge hands to a
// graphics-init collaborator: a display pointer on desktop hosts, a
// native-window reference on mobile hosts (§6 "Graphics-init collaborator").
// This implementation treats it as an opaque value round-tripped between
// Create/Realize and whatever the caller's native bindings expect.
type NativeHandle any

// Display and Config are opaque, externally-provided descriptors consumed
// by Create; their shape is host-defined.
type Display any
type Config any

var (
	windowMu   sync.Mutex
	theWindow  *Window
)

// Window is the process-wide single-window singleton (§3, §4.7). At most
// one exists at any time; destroy and realize are restricted to the
// creating thread.
type Window struct {
	display Display
	config  Config
	userPtr any
	creator *Thread

	mu      sync.Mutex
	width   int
	height  int
	caption string
	native  NativeHandle
}

// CreateWindow creates the single process-wide window, bound to display and
// config, attributed to the calling thread. A second call before the first
// window is destroyed fails with ErrPerm.
func CreateWindow(display Display, config Config, userPtr any) (*Window, Error) {
	creator := Self()
	if creator == nil {
		return nil, ErrInvalid
	}

	windowMu.Lock()
	defer windowMu.Unlock()
	if theWindow != nil {
		return nil, ErrPerm
	}

	w := &Window{
		display: display,
		config:  config,
		userPtr: userPtr,
		creator: creator,
	}
	theWindow = w
	creator.logEntry(LogEntry{Level: LevelInfo, Category: "window", Message: "created"})
	return w, ErrNone
}

// Destroy releases the window. Only the creating thread may destroy it;
// any other caller gets ErrInvalid and the window is left alive.
func (w *Window) Destroy() Error {
	if Self() != w.creator {
		return ErrInvalid
	}
	windowMu.Lock()
	defer windowMu.Unlock()
	if theWindow == w {
		theWindow = nil
	}
	w.creator.logEntry(LogEntry{Level: LevelInfo, Category: "window", Message: "destroyed"})
	return ErrNone
}

// Realize negotiates a native handle suitable for a graphics-init
// collaborator. Only the creating thread may call it (§4.7).
func (w *Window) Realize(native NativeHandle) Error {
	if Self() != w.creator {
		return ErrInvalid
	}
	w.mu.Lock()
	w.native = native
	w.mu.Unlock()
	return ErrNone
}

// NativeHandle returns the handle last supplied to Realize, or nil.
func (w *Window) NativeHandle() NativeHandle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.native
}

// SetSize updates the window's logical size and enqueues a
// WINDOW_PROPERTY_CHANGE event on the creating thread, even though the
// underlying host already applied the change synchronously, so user code
// can re-layout uniformly (§4.7).
func (w *Window) SetSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	w.notifyPropertyChange(WindowPropertySize)
}

// Size returns the window's current logical size.
func (w *Window) Size() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// SetCaption updates the window's caption and enqueues a
// WINDOW_PROPERTY_CHANGE event on the creating thread.
func (w *Window) SetCaption(caption string) {
	w.mu.Lock()
	w.caption = caption
	w.mu.Unlock()
	w.notifyPropertyChange(WindowPropertyCaption)
}

// Caption returns the window's current caption.
func (w *Window) Caption() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.caption
}

func (w *Window) notifyPropertyChange(prop WindowProperty) {
	ev, ok := w.creator.newTranslatedEvent(KindWindowPropertyChange, w.userPtr)
	if !ok {
		w.creator.setLastError(ErrOutOfMemory)
		return
	}
	ev.Payload = WindowPropertyPayload{Property: prop}
	w.creator.emitTranslated(ev)
}

// HostMessage is a single native input/lifecycle message, as delivered by a
// platform-specific window binding (key/mouse callbacks on desktop, an
// activity callback on mobile) (§4.7 "Input translation").
type HostMessage struct {
	Kind HostMessageKind

	// PointerX, PointerY, PointerDown apply to HostPointerButton/HostPointerMotion.
	PointerX, PointerY float64
	PointerDown        bool

	// KeyCode, KeyPressed apply to HostKeyArrow.
	KeyCode    KeyCode
	KeyPressed bool

	// Char applies to HostKeyChar.
	Char rune
}

// HostMessageKind discriminates the native message HostMessage carries.
type HostMessageKind uint8

const (
	HostPointerButton HostMessageKind = iota
	HostPointerMotion
	HostKeyArrow
	HostKeyChar
	HostClose
	HostFocus
	HostConfigChange
)

// WindowSource is a HostSource that translates native window messages into
// core events, per the minimum translation table in §4.7. A platform
// binding feeds it HostMessage values via Push; Pump drains them through
// the thread's host-source mechanism exactly like any other HostSource.
type WindowSource struct {
	window  *Window
	mu      sync.Mutex
	pending []HostMessage
}

// NewWindowSource creates a WindowSource bound to w, for registration on w's
// creating thread via Thread.RegisterHostSource.
func NewWindowSource(w *Window) *WindowSource {
	return &WindowSource{window: w}
}

// Push queues a native message for translation on the next Poll. Safe to
// call from whatever goroutine owns the platform's native message pump.
func (s *WindowSource) Push(msg HostMessage) {
	s.mu.Lock()
	s.pending = append(s.pending, msg)
	s.mu.Unlock()
}

// Poll implements HostSource: it drains queued native messages, translating
// each into zero or more core events via emit, per the minimum translation
// table. If allocating a translated event fails, ErrOutOfMemory is set on
// the creating thread and that whole message is dropped: a pointer-motion
// message allocates both its X and Y events before emitting either, so no
// partial events are enqueued. Translation continues with the next message.
func (s *WindowSource) Poll(emit func(*Event) bool) {
	s.mu.Lock()
	msgs := s.pending
	s.pending = nil
	s.mu.Unlock()

	w := s.window
	for _, msg := range msgs {
		switch msg.Kind {
		case HostPointerButton:
			ev, ok := w.creator.newTranslatedEvent(KindInputPointer, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			ev.Payload = PointerPayload{Axis: PointerSelect, Selected: msg.PointerDown, Value: 0}
			emit(ev)

		case HostPointerMotion:
			evX, ok := w.creator.newTranslatedEvent(KindInputPointer, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			evY, ok := w.creator.newTranslatedEvent(KindInputPointer, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			evX.Payload = PointerPayload{Axis: PointerX, Value: msg.PointerX}
			evY.Payload = PointerPayload{Axis: PointerY, Value: msg.PointerY}
			if !emit(evX) {
				continue
			}
			emit(evY)

		case HostKeyArrow:
			ev, ok := w.creator.newTranslatedEvent(KindInputKey, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			ev.Payload = KeyPayload{Pressed: msg.KeyPressed, Code: msg.KeyCode}
			emit(ev)

		case HostKeyChar:
			ev, ok := w.creator.newTranslatedEvent(KindInputKeyChar, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			ev.Payload = KeyCharPayload{Char: msg.Char}
			emit(ev)

		case HostClose:
			ev, ok := w.creator.newTranslatedEvent(KindQuit, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			emit(ev)

		case HostFocus:
			ev, ok := w.creator.newTranslatedEvent(KindWindowFocus, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			emit(ev)

		case HostConfigChange:
			ev, ok := w.creator.newTranslatedEvent(KindWindowPropertyChange, w.userPtr)
			if !ok {
				w.creator.setLastError(ErrOutOfMemory)
				continue
			}
			ev.Payload = WindowPropertyPayload{Property: WindowPropertyUnset}
			emit(ev)
		}
	}
}
