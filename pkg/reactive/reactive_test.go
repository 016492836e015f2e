package reactive

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservable(t *testing.T) {
	rt := NewRuntime()

	t.Run("set notifies subscribers", func(t *testing.T) {
		count := NewObservable(rt, 0)
		runs := 0
		w := NewWatcher(rt, func() any { runs++; return count.Get() }, Sync())

		count.Set(1)
		assert.Equal(t, 2, runs)
		assert.Equal(t, 1, w.Value())
	})

	t.Run("equal set is a no-op", func(t *testing.T) {
		name := NewObservable(rt, "a")
		runs := 0
		w := NewWatcher(rt, func() any { runs++; return name.Get() }, Sync())

		name.Set("a")
		assert.Equal(t, 1, runs)
		runtime.KeepAlive(w)
	})

	t.Run("custom equality", func(t *testing.T) {
		items := NewObservable(rt, []int{1}).WithEquals(func(a, b []int) bool { return len(a) == len(b) })
		runs := 0
		w := NewWatcher(rt, func() any { runs++; return items.Get() }, Sync())

		items.Set([]int{2})
		assert.Equal(t, 1, runs)
		items.Update(func(v []int) []int { return append(v, 3) })
		assert.Equal(t, 2, runs)
		runtime.KeepAlive(w)
	})

	t.Run("peek does not subscribe", func(t *testing.T) {
		v := NewObservable(rt, 1)
		w := NewWatcher(rt, func() any { return v.Peek() }, Sync())
		assert.Equal(t, 0, w.Deps())
		assert.Equal(t, 0, v.Slot().Subscribers())
	})
}

func TestSame(t *testing.T) {
	s := []int{1, 2}
	m := map[string]int{"a": 1}

	assert.True(t, Same(1, 1))
	assert.False(t, Same(1, int64(1)))
	assert.True(t, Same(nil, nil))
	assert.False(t, Same(nil, 0))
	assert.True(t, Same(s, s))
	assert.False(t, Same(s, []int{1, 2}))
	assert.True(t, Same(m, m))
	assert.False(t, Same(struct{ v any }{[]int{}}, struct{ v any }{[]int{}}))
}

func TestBatchingCoalescesUpdates(t *testing.T) {
	rt := NewRuntime()
	a := NewObservable(rt, 0)
	b := NewObservable(rt, 0)

	runs := 0
	w := NewWatcher(rt, func() any {
		runs++
		return a.Get() + b.Get()
	}, Render())
	require.Equal(t, 1, runs)

	rt.Loop().Do(func() {
		for i := 1; i <= 10; i++ {
			a.Set(i)
			b.Set(i)
		}
		assert.Equal(t, 1, runs, "re-run must wait for the task to finish")
	})

	assert.Equal(t, 2, runs)
	assert.Equal(t, 20, w.Value())
	assert.Equal(t, KindRender, w.Kind())
}

func TestDependencyRecollection(t *testing.T) {
	rt := NewRuntime()
	useA := NewObservable(rt, true)
	a := NewObservable(rt, "a")
	b := NewObservable(rt, "b")

	runs := 0
	w := NewWatcher(rt, func() any {
		runs++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	}, Sync())

	assert.Equal(t, 2, w.Deps())
	useA.Set(false)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 0, a.Slot().Subscribers(), "stale dependency should be dropped")

	a.Set("a2")
	assert.Equal(t, 2, runs)
	b.Set("b2")
	assert.Equal(t, 3, runs)
	assert.Equal(t, "b2", w.Value())
}

func TestComputed(t *testing.T) {
	rt := NewRuntime()
	first := NewObservable(rt, "Ada")
	last := NewObservable(rt, "Lovelace")

	evals := 0
	full := NewComputed(rt, func() string {
		evals++
		return first.Get() + " " + last.Get()
	})
	assert.Equal(t, 0, evals, "computed is lazy")

	assert.Equal(t, "Ada Lovelace", full.Get())
	assert.Equal(t, "Ada Lovelace", full.Get())
	assert.Equal(t, 1, evals)

	var seen []string
	reader := NewWatcher(rt, func() any {
		v := full.Get()
		seen = append(seen, v)
		return v
	}, Sync())

	last.Set("Byron")
	assert.Equal(t, []string{"Ada Lovelace", "Ada Byron"}, seen)
	assert.Equal(t, 2, evals)
	assert.True(t, full.Watcher().Active())
	runtime.KeepAlive(reader)
}

func TestNestedTrackingRestoresOuter(t *testing.T) {
	rt := NewRuntime()
	inner := NewObservable(rt, 1)
	outer := NewObservable(rt, 1)

	c := NewComputed(rt, func() int { return inner.Get() * 10 })

	var active []*Watcher
	w := NewWatcher(rt, func() any {
		v := c.Get()
		active = append(active, rt.Active())
		return v + outer.Get()
	}, Sync())

	require.Len(t, active, 1)
	assert.Same(t, w, active[0])
	assert.Nil(t, rt.Active())

	outer.Set(2)
	assert.Equal(t, 12, w.Value())
}

func TestUntracked(t *testing.T) {
	rt := NewRuntime()
	v := NewObservable(rt, 1)
	w := NewWatcher(rt, func() any {
		var out int
		rt.Untracked(func() { out = v.Get() })
		return out
	}, Sync())
	assert.Equal(t, 0, w.Deps())
}

func TestWatchCallback(t *testing.T) {
	rt := NewRuntime()
	count := NewObservable(rt, 1)

	type change struct{ newValue, oldValue int }
	var changes []change
	w := Watch(rt, func() int { return count.Get() * 2 }, func(n, o int) {
		changes = append(changes, change{n, o})
	}, Immediate())

	rt.Loop().Do(func() { count.Set(2) })
	rt.Loop().Do(func() { count.Set(2) })

	assert.Equal(t, []change{{2, 0}, {4, 2}}, changes)
	assert.Equal(t, KindUser, w.Kind())
}

func TestTriggerReplacesQueueing(t *testing.T) {
	rt := NewRuntime()
	v := NewObservable(rt, 0)
	triggered := 0
	w := NewWatcher(rt, func() any { return v.Get() }, Trigger(func() { triggered++ }))

	v.Set(1)
	v.Set(2)
	assert.Equal(t, 2, triggered)
	assert.Equal(t, 0, rt.Scheduler().Pending())
	runtime.KeepAlive(w)
}

func TestTeardown(t *testing.T) {
	rt := NewRuntime()
	v := NewObservable(rt, 0)
	runs := 0
	w := NewWatcher(rt, func() any { runs++; return v.Get() }, Sync())

	w.Teardown()
	v.Set(1)
	assert.Equal(t, 1, runs)
	assert.False(t, w.Active())
	assert.Equal(t, 0, v.Slot().Subscribers())
}

func TestCollectedWatcherIsPruned(t *testing.T) {
	rt := NewRuntime()
	v := NewObservable(rt, 0)

	func() {
		NewWatcher(rt, func() any { return v.Get() }, Sync())
	}()
	require.Equal(t, 1, v.Slot().Subscribers())

	runtime.GC()
	runtime.GC()
	v.Set(1)
	assert.Equal(t, 0, v.Slot().Subscribers())
}

type recordJob struct {
	id  uint64
	log *[]uint64
}

func (j recordJob) ID() uint64 { return j.id }
func (j recordJob) Run()       { *j.log = append(*j.log, j.id) }

func TestSchedulerFIFOAndDedup(t *testing.T) {
	rt := NewRuntime()
	s := rt.Scheduler()
	var log []uint64

	rt.Loop().Do(func() {
		s.Queue(recordJob{3, &log})
		s.Queue(recordJob{1, &log})
		s.Queue(recordJob{3, &log})
		s.Queue(recordJob{2, &log})
		assert.Equal(t, 3, s.Pending())
	})

	assert.Equal(t, []uint64{3, 1, 2}, log)
	assert.Equal(t, 1, s.Flushes())
}

func TestSchedulerJobsQueuedDuringFlush(t *testing.T) {
	rt := NewRuntime()
	s := rt.Scheduler()
	var order []string

	rt.Loop().Do(func() {
		s.Queue(JobFunc(1, "", func() {
			order = append(order, "first")
			s.Queue(JobFunc(2, "", func() { order = append(order, "second") }))
		}))
	})

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 1, s.Flushes())
}

func TestSchedulerCircularGuard(t *testing.T) {
	var flushes []FlushInfo
	rt := NewRuntime(WithFlushHook(func(f FlushInfo) { flushes = append(flushes, f) }))
	s := rt.Scheduler()

	runs := 0
	var job Job
	job = JobFunc(NextID(), "loop", func() {
		runs++
		s.Queue(job)
	})
	other := 0

	rt.Loop().Do(func() {
		s.Queue(job)
		s.Queue(JobFunc(NextID(), "", func() { other++ }))
	})

	assert.Equal(t, MaxUpdateCount+1, runs)
	assert.Equal(t, 1, other, "other jobs still run")
	require.Len(t, flushes, 1)
	assert.Equal(t, 1, flushes[0].Dropped)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	var jobs []JobInfo
	rt := NewRuntime(WithJobHook(func(j JobInfo) { jobs = append(jobs, j) }))
	s := rt.Scheduler()
	ran := false

	rt.Loop().Do(func() {
		s.Queue(JobFunc(1, "bad", func() { panic("boom") }))
		s.Queue(JobFunc(2, "good", func() { ran = true }))
	})

	assert.True(t, ran)
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].Panicked)
	assert.Equal(t, "good", jobs[1].Kind)
}

func TestNextTickDedup(t *testing.T) {
	rt := NewRuntime()
	calls := 0
	cb := func() { calls++ }

	rt.Loop().Do(func() {
		rt.NextTick(cb, "ctx")
		rt.NextTick(cb, "ctx")
		rt.NextTick(cb, "other")
		rt.NextTick(cb, []int{1})
		rt.NextTick(cb, []int{1})
		assert.Equal(t, 0, calls)
	})
	assert.Equal(t, 4, calls)

	rt.Loop().Do(func() { rt.NextTick(cb, "ctx") })
	assert.Equal(t, 5, calls, "dedup only applies while pending")
}

func TestNextTickRunsAfterQueuedJobs(t *testing.T) {
	rt := NewRuntime()
	v := NewObservable(rt, 0)
	var order []string
	w := NewWatcher(rt, func() any {
		order = append(order, "render")
		return v.Get()
	})
	order = nil

	rt.Loop().Do(func() {
		v.Set(1)
		rt.NextTick(func() { order = append(order, "tick") }, nil)
	})
	assert.Equal(t, []string{"render", "tick"}, order)
	runtime.KeepAlive(w)
}

func TestLoopCall(t *testing.T) {
	loop := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	var micro bool
	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	err := loop.Call(callCtx, func() {
		loop.Microtask(func() { micro = true })
	})
	require.NoError(t, err)

	err = loop.Call(callCtx, func() {})
	require.NoError(t, err)
	assert.True(t, micro)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestLoopSurvivesPanickingTask(t *testing.T) {
	loop := NewLoop(nil)
	ran := false
	loop.Post(func() { panic("boom") })
	loop.Post(func() { ran = true })
	loop.RunPending()
	assert.True(t, ran)
}
