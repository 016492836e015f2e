package reactive

import (
	"context"
	"log/slog"
	"sync"
)

// Loop is a cooperative single-goroutine event loop. Macrotasks are posted
// from any goroutine; microtasks are queued by code running on the loop and
// drained after every macrotask.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}

	micro    []func()
	draining bool

	logger *slog.Logger
}

// NewLoop creates an idle loop. A nil logger uses slog.Default.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Post enqueues fn as a macrotask. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Microtask enqueues fn to run when the current macrotask finishes. It must
// be called on the loop goroutine.
func (l *Loop) Microtask(fn func()) {
	l.micro = append(l.micro, fn)
}

// PendingMicrotasks returns the number of queued microtasks.
func (l *Loop) PendingMicrotasks() int { return len(l.micro) }

// Drain runs microtasks until the queue is empty, including microtasks
// queued while draining. A nested Drain is a no-op.
func (l *Loop) Drain() {
	if l.draining {
		return
	}
	l.draining = true
	defer func() { l.draining = false }()
	for len(l.micro) > 0 {
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		fn()
	}
	l.micro = nil
}

// Do runs fn as a macrotask on the calling goroutine, then drains the
// microtask queue. Tests and single-goroutine callers use Do instead of Run.
func (l *Loop) Do(fn func()) {
	defer l.Drain()
	fn()
}

// RunPending runs every posted macrotask on the calling goroutine.
func (l *Loop) RunPending() {
	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, task := range tasks {
			l.runTask(task)
		}
	}
}

// Run processes posted macrotasks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Call posts fn and waits until it has run on the loop.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", "panic", r)
		}
	}()
	l.Do(task)
}
