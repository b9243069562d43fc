package kd

import "os"

// EntryFunc is the user entry point (§6 "Entry point"): it receives the
// process's command-line arguments and returns a process exit code.
type EntryFunc func(args []string) int

// Run is the bootstrap sequence (§4.8 C9):
//
//  1. Allocate the process-wide TLS-equivalent slot (idempotent, via the
//     package-level thread registry's one-shot init).
//  2. Construct the main thread context and register it under the
//     calling goroutine's ID.
//  3. Invoke entry(args), capturing its return code.
//  4. Free the main thread context and unregister it.
//  5. Return the captured code to the caller, which forwards it to
//     os.Exit.
//
// Run must be called from the goroutine that should become the main
// thread (ordinarily, the goroutine running func main()). It does not
// itself call os.Exit so that callers (tests in particular) can observe
// the returned code without terminating the test binary.
func Run(entry EntryFunc, opts ...Option) int {
	o := resolveOptions(opts)
	main := newThread(ThreadAttr{DetachState: Joinable, DebugName: "main"}, o)
	main.isMain = true

	gid := goroutineID()
	registerThread(main, gid)
	defer func() {
		unregisterThread(gid)
		main.teardown()
	}()

	return entry(os.Args[1:])
}

// IsMainThread reports whether t is the bootstrap-constructed main thread.
func (t *Thread) IsMainThread() bool { return t.isMain }
