package kd

import (
	"errors"
	"time"
)

// TimerMode selects a timer's drift policy (§4.6). Modes differ only in how
// they respond to scheduling delay: ONE_SHOT fires once; AVERAGE accepts
// drift so the long-run rate stays close to 1/interval; MINIMUM guarantees
// at least interval between consecutive fires, at the cost of the rate
// falling behind under load.
type TimerMode int

const (
	TimerOneShot TimerMode = iota
	TimerPeriodicAverage
	TimerPeriodicMinimum
)

// Timer is a handle returned by SetTimer. It owns a worker goroutine that
// sleeps, posts a TIMER event to the creating thread, and repeats until
// cancelled (one-shot timers exit after their first fire).
type Timer struct {
	creator *Thread
	worker  *Thread
	userPtr any
}

// timerPayload is the worker goroutine's closure state, named after the
// original API's __KDTimerPayload.
type timerPayload struct {
	interval    time.Duration
	mode        TimerMode
	userPtr     any
	destination *Thread
	clock       Clock
}

// SetTimer spawns an internal worker thread that posts a TIMER event to the
// calling thread every interval, per mode's drift policy, until the
// returned Timer is cancelled (or fires once, for TimerOneShot) (§4.6).
// SetTimer must be called from the thread that will own the timer; Cancel
// later checks this.
func SetTimer(interval time.Duration, mode TimerMode, userPtr any, opts ...Option) (*Timer, Error) {
	creator := Self()
	if creator == nil {
		return nil, ErrInvalid
	}
	o := resolveOptions(opts)

	payload := &timerPayload{
		interval:    interval,
		mode:        mode,
		userPtr:     userPtr,
		destination: creator,
		clock:       o.clock,
	}

	worker := Spawn(&ThreadAttr{DetachState: Joinable, DebugName: "timer-worker"}, func(arg any) any {
		runTimerWorker(arg.(*timerPayload))
		return nil
	}, payload, opts...)

	return &Timer{creator: creator, worker: worker, userPtr: userPtr}, ErrNone
}

// runTimerWorker is the timer worker's body, grounded directly on the
// original __kdTimerHandler loop: sleep, post TIMER, break if one-shot,
// otherwise wait once on the worker's own queue for a cancellation QUIT
// before looping back to sleep.
func runTimerWorker(p *timerPayload) {
	self := Self()
	if self == nil {
		raiseFault("kdTimerWorker", errors.New("timer worker goroutine is not registered as a thread"))
	}
	next := p.clock.NowNanos() + p.interval.Nanoseconds()

	for {
		switch p.mode {
		case TimerPeriodicAverage:
			now := p.clock.NowNanos()
			sleep := next - now
			if sleep > 0 {
				p.clock.Sleep(time.Duration(sleep))
			}
			next += p.interval.Nanoseconds()
		default: // TimerOneShot, TimerPeriodicMinimum
			p.clock.Sleep(p.interval)
		}

		ev := NewEvent()
		ev.Kind = KindTimer
		ev.UserPtr = p.userPtr
		self.PostTo(p.destination, ev)
		self.logEntry(LogEntry{Level: LevelDebug, Category: "timer", TimerID: self.id, Message: "fired"})

		if p.mode == TimerOneShot {
			break
		}

		event, _ := self.Wait(-1)
		if event != nil {
			if event.Kind == KindQuit {
				break
			}
			defaultHandler(event)
		}
	}
}

// Cancel posts a quit request to the timer's worker and blocks until it has
// joined, then releases the Timer. Only the thread that created the timer
// may cancel it (§4.6); any other caller gets ErrInvalid and the timer is
// left running.
func (tm *Timer) Cancel() Error {
	if Self() != tm.creator {
		return ErrInvalid
	}
	quit := NewEvent()
	quit.Kind = KindQuit
	tm.creator.PostTo(tm.worker, quit)
	tm.creator.logEntry(LogEntry{Level: LevelDebug, Category: "timer", TimerID: tm.worker.id, Message: "cancelled"})
	tm.worker.Join()
	return ErrNone
}
