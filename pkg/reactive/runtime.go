package reactive

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// idCounter is the source of ids for slots, watchers and jobs.
var idCounter uint64

// NextID returns a process-wide unique id. Ids are never reused.
func NextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// JobInfo describes one job run by the scheduler.
type JobInfo struct {
	ID       uint64
	Kind     string
	Duration time.Duration
	Panicked bool
}

// FlushInfo describes one scheduler flush.
type FlushInfo struct {
	Start    time.Time
	Duration time.Duration
	Jobs     int
	Dropped  int
}

// Runtime is the tracking context shared by a set of slots and watchers.
type Runtime struct {
	stack []*Watcher

	loop  *Loop
	sched *Scheduler

	logger *slog.Logger
	debug  bool

	jobHooks   []func(JobInfo)
	flushHooks []func(FlushInfo)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger for development diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithDebug enables development diagnostics.
func WithDebug(debug bool) Option {
	return func(rt *Runtime) { rt.debug = debug }
}

// WithLoop makes the runtime schedule its flushes on an existing loop.
func WithLoop(l *Loop) Option {
	return func(rt *Runtime) { rt.loop = l }
}

// WithJobHook registers fn to observe every job the scheduler runs.
func WithJobHook(fn func(JobInfo)) Option {
	return func(rt *Runtime) { rt.jobHooks = append(rt.jobHooks, fn) }
}

// WithFlushHook registers fn to observe every scheduler flush.
func WithFlushHook(fn func(FlushInfo)) Option {
	return func(rt *Runtime) { rt.flushHooks = append(rt.flushHooks, fn) }
}

// NewRuntime creates a runtime with its own scheduler. Without WithLoop a
// fresh Loop is created.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{logger: slog.Default()}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.loop == nil {
		rt.loop = NewLoop(rt.logger)
	}
	rt.sched = newScheduler(rt)
	return rt
}

// AddJobHook registers fn to observe every job the scheduler runs from now on.
func (rt *Runtime) AddJobHook(fn func(JobInfo)) { rt.jobHooks = append(rt.jobHooks, fn) }

// AddFlushHook registers fn to observe every later scheduler flush.
func (rt *Runtime) AddFlushHook(fn func(FlushInfo)) { rt.flushHooks = append(rt.flushHooks, fn) }

// Loop returns the event loop that runs the runtime's microtasks.
func (rt *Runtime) Loop() *Loop { return rt.loop }

// Scheduler returns the runtime's scheduler.
func (rt *Runtime) Scheduler() *Scheduler { return rt.sched }

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Debug reports whether development diagnostics are enabled.
func (rt *Runtime) Debug() bool { return rt.debug }

// Active returns the watcher currently being evaluated, or nil.
func (rt *Runtime) Active() *Watcher {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

// push makes w the active watcher. A nil w suspends tracking.
func (rt *Runtime) push(w *Watcher) {
	rt.stack = append(rt.stack, w)
}

func (rt *Runtime) pop() {
	rt.stack[len(rt.stack)-1] = nil
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// Untracked runs fn without subscribing the active watcher to anything fn reads.
func (rt *Runtime) Untracked(fn func()) {
	rt.push(nil)
	defer rt.pop()
	fn()
}

// NextTick schedules cb after the current synchronous batch. See
// Scheduler.NextTick.
func (rt *Runtime) NextTick(cb func(), ctx any) {
	rt.sched.NextTick(cb, ctx)
}
