package kd

// runtimeOptions holds configuration shared by a thread's event queue,
// loop, and window bridge. Built from Option values applied as closures
// over a private struct, never a public struct literal callers would
// need to zero out field-by-field.
type runtimeOptions struct {
	logger            Logger
	queueCapacityHint int
	strictDispatch    bool
	clock             Clock
	allocFailHook     func() bool
}

// Option configures a Thread (via Spawn or Run) or a Timer (via SetTimer) at
// construction.
type Option interface {
	apply(*runtimeOptions)
}

type optionFunc func(*runtimeOptions)

func (f optionFunc) apply(o *runtimeOptions) { f(o) }

// WithLogger attaches a structured Logger. The default is a no-op logger.
func WithLogger(l Logger) Option {
	return optionFunc(func(o *runtimeOptions) { o.logger = l })
}

// WithQueueCapacityHint advises the event queue of an expected peak size.
// Purely advisory; see ring.New.
func WithQueueCapacityHint(n int) Option {
	return optionFunc(func(o *runtimeOptions) { o.queueCapacityHint = n })
}

// WithStrictDispatchOrder forces Pump to re-scan the queue for newly
// enqueued events against the callback table a second time within the
// same call, after host sources have been drained. Without it, an event
// that lands in the queue during step 2 without a matching callback at
// emission time waits for the following Pump call before a callback
// installed in between gets a chance at it; with it enabled, that second
// scan catches such events immediately. Default is false, matching
// §4.5's two-step drain-and-dispatch description.
func WithStrictDispatchOrder(enabled bool) Option {
	return optionFunc(func(o *runtimeOptions) { o.strictDispatch = enabled })
}

// WithClock overrides the high-resolution clock collaborator. Used by
// deterministic tests to control elapsed time without real sleeps.
func WithClock(c Clock) Option {
	return optionFunc(func(o *runtimeOptions) { o.clock = c })
}

// WithAllocFailureHook installs a deterministic test hook consulted before
// each event allocation; when it returns true the allocation is treated as
// having failed (ErrOutOfMemory), exercising the §4.5/§4.7 OOM paths
// without needing to actually exhaust memory.
func WithAllocFailureHook(fn func() bool) Option {
	return optionFunc(func(o *runtimeOptions) { o.allocFailHook = fn })
}

func resolveOptions(opts []Option) *runtimeOptions {
	o := &runtimeOptions{
		logger: NewNoOpLogger(),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(o)
	}
	return o
}
