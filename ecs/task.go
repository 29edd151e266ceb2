package ecs

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Counter is a join counter: a scheduler increments it when a task is scheduled
// and decrements it when the task finishes.
type Counter struct {
	pending atomic.Int64
}

// Increment registers one more task.
func (c *Counter) Increment() {
	c.pending.Add(1)
}

// Decrement marks one task as finished.
func (c *Counter) Decrement() {
	c.pending.Add(-1)
}

// Pending returns the number of unfinished tasks.
func (c *Counter) Pending() int64 {
	return c.pending.Load()
}

// IsIdle reports whether every registered task has finished.
func (c *Counter) IsIdle() bool {
	return c.pending.Load() <= 0
}

// BusyWait spins until every registered task has finished.
func (c *Counter) BusyWait() {
	for !c.IsIdle() {
		runtime.Gosched()
	}
}

// TaskScheduler runs fire-and-join tasks. Schedule must increment counter before
// returning and decrement it once task has run. Tasks always run to completion.
type TaskScheduler interface {
	Schedule(task func(), counter *Counter)
}

// Pool is the default TaskScheduler. It runs at most limit tasks at once on
// their own goroutines; when all slots are busy the task runs on the caller.
type Pool struct {
	group errgroup.Group
	limit int
}

// NewPool creates a Pool running up to limit tasks concurrently. A limit below
// one means GOMAXPROCS.
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	p := &Pool{limit: limit}
	p.group.SetLimit(limit)
	return p
}

func defaultPool() *Pool {
	return NewPool(0)
}

// Concurrency returns the number of tasks the pool runs at once.
func (p *Pool) Concurrency() int {
	return p.limit
}

// Schedule runs task on a pool goroutine, or inline when the pool is saturated.
func (p *Pool) Schedule(task func(), counter *Counter) {
	counter.Increment()
	run := func() error {
		defer counter.Decrement()
		task()
		return nil
	}
	if !p.group.TryGo(run) {
		_ = run()
	}
}

// InlineScheduler runs every task on the calling goroutine.
type InlineScheduler struct{}

// Schedule runs task immediately.
func (InlineScheduler) Schedule(task func(), counter *Counter) {
	counter.Increment()
	defer counter.Decrement()
	task()
}
