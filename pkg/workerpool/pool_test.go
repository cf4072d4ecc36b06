package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/marketplace/pkg/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}

	wg.Wait()
	assert.Equal(t, int64(n), count.Load())
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.SubmitWait(func() {
		close(started)
		<-blocker
	}))
	<-started

	// Buffer is 2 for a single worker.
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)
	close(blocker)
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(func() {}), workerpool.ErrPoolClosed)
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	recovered := make(chan any, 1)
	pool.OnPanic = func(v any) { recovered <- v }

	require.NoError(t, pool.SubmitWait(func() { panic("boom") }))

	select {
	case v := <-recovered:
		assert.Equal(t, "boom", v)
	case <-time.After(2 * time.Second):
		t.Fatal("panic was not reported")
	}

	normal := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() { close(normal) }))

	select {
	case <-normal:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic")
	}
}

func TestPool_ShutdownRunsBufferedTasks(t *testing.T) {
	pool := workerpool.New(1)

	var ran atomic.Int32
	for i := 0; i < 2; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}))
	}

	pool.Shutdown()
	assert.Equal(t, int32(2), ran.Load())
	assert.Equal(t, int64(0), pool.Active())
}
