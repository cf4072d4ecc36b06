// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The event dispatcher runs async order listeners on a Pool so a burst of
// placements cannot spawn an unbounded number of goroutines. When every
// worker is busy and the buffer is full, Submit returns ErrPoolFull and the
// caller decides whether to block, drop or run inline.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    // backpressure
//	}
package workerpool

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}
	active  atomic.Int64

	// OnPanic, when set, receives the value of a recovered task panic.
	OnPanic func(v any)
}

// New creates a Pool with size workers and a buffer of 2×size tasks.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.closeCh:
		return ErrPoolClosed
	default:
		return ErrPoolFull
	}
}

// SubmitWait is like Submit but blocks until a slot is available or the pool
// is closed.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

// Active returns the number of tasks currently executing.
func (p *Pool) Active() int64 { return p.active.Load() }

// Shutdown stops accepting tasks, runs whatever is already buffered and
// waits for the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			p.run(task)
		case <-p.closeCh:
			for {
				select {
				case task := <-p.tasks:
					p.run(task)
				default:
					return
				}
			}
		}
	}
}

// run executes task, recovering from panics so a bad task doesn't kill
// the worker goroutine.
func (p *Pool) run(task func()) {
	p.active.Add(1)
	defer p.active.Add(-1)
	defer func() {
		if v := recover(); v != nil && p.OnPanic != nil {
			p.OnPanic(v)
		}
	}()
	task()
}
