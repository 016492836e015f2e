package reactive

import (
	"fmt"
	"reflect"
	"time"

	qerrors "github.com/quarkc-go/quark/internal/errors"
)

// MaxUpdateCount bounds how many times one job may re-queue itself within a
// single flush. A job exceeding it is almost certainly a watcher that writes
// a slot it also reads; it is dropped for the rest of the flush so the flush
// terminates.
const MaxUpdateCount = 100

// Job is a unit of scheduled work. Jobs with the same ID are deduplicated
// while queued.
type Job interface {
	ID() uint64
	Run()
}

type funcJob struct {
	id   uint64
	kind string
	fn   func()
}

func (j funcJob) ID() uint64 { return j.id }
func (j funcJob) Run()       { j.fn() }

// JobFunc wraps fn as a job with the given id. kind labels the job in
// JobInfo; an empty kind reports "job".
func JobFunc(id uint64, kind string, fn func()) Job {
	if kind == "" {
		kind = "job"
	}
	return funcJob{id: id, kind: kind, fn: fn}
}

type tickKey struct {
	pc  uintptr
	ctx any
}

type tick struct {
	key   tickKey
	dedup bool
	fn    func()
}

// Scheduler batches job runs and next-tick callbacks into microtasks.
type Scheduler struct {
	rt *Runtime

	queue    []Job
	has      map[uint64]bool
	circular map[uint64]int
	dropped  map[uint64]bool
	flushing bool
	index    int

	ticks       []tick
	tickKeys    map[tickKey]bool
	tickPending bool

	flushes int
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{
		rt:       rt,
		has:      make(map[uint64]bool),
		circular: make(map[uint64]int),
		dropped:  make(map[uint64]bool),
		tickKeys: make(map[tickKey]bool),
	}
}

// Queue adds job to the pending flush unless a job with the same id is
// already pending. Jobs run in order of first enqueue; jobs queued during a
// flush run in the same flush.
func (s *Scheduler) Queue(job Job) {
	id := job.ID()
	if s.has[id] {
		return
	}
	s.has[id] = true
	s.queue = append(s.queue, job)
	if !s.flushing {
		s.NextTick(s.flush, s)
	}
}

// Pending returns the number of queued jobs not yet run.
func (s *Scheduler) Pending() int {
	if s.flushing {
		return len(s.queue) - s.index - 1
	}
	return len(s.queue)
}

// Flushes returns the number of completed flushes.
func (s *Scheduler) Flushes() int { return s.flushes }

// NextTick runs cb once the current synchronous batch completes. Calls are
// deduplicated per (callback code, ctx) pair until the callbacks run;
// closures created from the same function literal share code, so they
// deduplicate together when ctx is equal. A ctx that is not comparable
// disables deduplication for that call.
func (s *Scheduler) NextTick(cb func(), ctx any) {
	key := tickKey{pc: reflect.ValueOf(cb).Pointer(), ctx: ctx}
	dedup := ctx == nil || reflect.TypeOf(ctx).Comparable()
	if dedup {
		if s.tickKeys[key] {
			return
		}
		s.tickKeys[key] = true
	}
	s.ticks = append(s.ticks, tick{key: key, dedup: dedup, fn: cb})
	if !s.tickPending {
		s.tickPending = true
		s.rt.loop.Microtask(s.flushTicks)
	}
}

func (s *Scheduler) flushTicks() {
	ticks := s.ticks
	s.ticks = nil
	s.tickPending = false
	for _, t := range ticks {
		if t.dedup {
			delete(s.tickKeys, t.key)
		}
	}
	for _, t := range ticks {
		s.protect("tick", t.fn)
	}
}

func (s *Scheduler) flush() {
	start := time.Now()
	s.flushing = true
	ran := 0

	for s.index = 0; s.index < len(s.queue); s.index++ {
		job := s.queue[s.index]
		id := job.ID()
		if s.dropped[id] {
			continue
		}
		delete(s.has, id)

		jobStart := time.Now()
		panicked := s.protect(kindOf(job), job.Run)
		ran++
		s.emitJob(JobInfo{ID: id, Kind: kindOf(job), Duration: time.Since(jobStart), Panicked: panicked})

		if s.has[id] {
			s.circular[id]++
			if s.circular[id] > MaxUpdateCount {
				s.dropped[id] = true
				if s.rt.debug {
					err := qerrors.New("Q006").WithDetail(fmt.Sprintf("job %d (%s) re-queued more than %d times", id, kindOf(job), MaxUpdateCount))
					s.rt.logger.Warn("circular update", "code", err.Code, "job", id, "error", err)
				}
			}
		}
	}

	info := FlushInfo{Start: start, Duration: time.Since(start), Jobs: ran, Dropped: len(s.dropped)}
	s.queue = s.queue[:0]
	s.index = 0
	clear(s.has)
	clear(s.circular)
	clear(s.dropped)
	s.flushing = false
	s.flushes++

	for _, fn := range s.rt.flushHooks {
		fn(info)
	}
}

func (s *Scheduler) emitJob(info JobInfo) {
	for _, fn := range s.rt.jobHooks {
		fn(info)
	}
}

// protect runs fn and reports whether it panicked. Panics are logged in
// debug mode and never escape the flush.
func (s *Scheduler) protect(kind string, fn func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			if s.rt.debug {
				err := qerrors.New("Q007").WithDetail(fmt.Sprintf("%s panicked: %v", kind, r))
				s.rt.logger.Warn("scheduled callback panicked", "code", err.Code, "kind", kind, "panic", r)
			}
		}
	}()
	fn()
	return false
}

func kindOf(job Job) string {
	switch j := job.(type) {
	case *Watcher:
		return j.Kind()
	case funcJob:
		return j.kind
	default:
		return "job"
	}
}
