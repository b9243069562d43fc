// Command kdhello is a minimal bootstrap demonstrating the event loop:
// it opens a window, arms a periodic timer, and pumps events until the
// window reports a close request.
//
// Run with: go run ./cmd/kdhello
package main

import (
	"fmt"
	"os"
	"time"

	kd "github.com/kdrt/kd"
)

func main() {
	os.Exit(kd.Run(run, kd.WithLogger(kd.NewDefaultLogger(kd.LevelInfo))))
}

func run(args []string) int {
	self := kd.Self()

	win, kerr := kd.CreateWindow(nil, nil, nil)
	if kerr != kd.ErrNone {
		fmt.Fprintf(os.Stderr, "create window: %v\n", kerr)
		return 1
	}
	defer win.Destroy()

	source := kd.NewWindowSource(win)
	self.RegisterHostSource(source)
	defer self.UnregisterHostSource(source)

	ticks := 0
	self.InstallCallback(func(ev *kd.Event) {
		ticks++
		fmt.Printf("tick %d\n", ticks)
	}, kd.KindTimer, nil)

	timer, kerr := kd.SetTimer(250*time.Millisecond, kd.TimerPeriodicAverage, nil)
	if kerr != kd.ErrNone {
		fmt.Fprintf(os.Stderr, "set timer: %v\n", kerr)
		return 1
	}
	defer timer.Cancel()

	// Simulate a host-delivered close request arriving after a few ticks.
	go func() {
		time.Sleep(1200 * time.Millisecond)
		source.Push(kd.HostMessage{Kind: kd.HostClose})
	}()

	for {
		ev, _ := self.Wait(int64(20 * time.Millisecond))
		if ev == nil {
			continue
		}
		if ev.Kind == kd.KindQuit {
			fmt.Println("quit requested, shutting down")
			return 0
		}
	}
}
