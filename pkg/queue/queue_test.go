package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/marketplace/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	echoCalls atomic.Int32
	failCalls atomic.Int32
)

type echoJob struct{ Val string }

func (j *echoJob) Handle(context.Context) error {
	echoCalls.Add(1)
	return nil
}

type failJob struct{ Val string }

func (j *failJob) Handle(context.Context) error {
	failCalls.Add(1)
	return errors.New("always fails")
}

func startWorkers(t *testing.T) {
	t.Helper()
	queue.SetDriver(queue.NewMemoryDriver())
	queue.SetBackoff(time.Millisecond)
	queue.Register("*queue_test.echoJob", func() queue.Job { return &echoJob{} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{} })

	ctx, cancel := context.WithCancel(context.Background())
	wg := queue.StartWorkers(ctx, 2)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func TestDispatchAndProcess(t *testing.T) {
	startWorkers(t)
	before := echoCalls.Load()

	require.NoError(t, queue.Dispatch(context.Background(), &echoJob{Val: "hello"}))

	assert.Eventually(t, func() bool { return echoCalls.Load() == before+1 }, time.Second, 5*time.Millisecond)
}

func TestFailedJobIsRetriedThenRecorded(t *testing.T) {
	startWorkers(t)
	queue.SetMaxRetry(2)
	defer queue.SetMaxRetry(3)

	beforeCalls := failCalls.Load()
	beforeFailed := len(queue.FailedJobs())

	require.NoError(t, queue.Dispatch(context.Background(), &failJob{Val: "x"}))

	assert.Eventually(t, func() bool { return len(queue.FailedJobs()) == beforeFailed+1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, beforeCalls+2, failCalls.Load())

	last := queue.FailedJobs()[len(queue.FailedJobs())-1]
	assert.Equal(t, "*queue_test.failJob", last.Type)
	assert.Equal(t, 2, last.Attempts)
}

func TestDispatchAfterWaits(t *testing.T) {
	startWorkers(t)
	before := echoCalls.Load()

	require.NoError(t, queue.DispatchAfter(context.Background(), &echoJob{Val: "later"}, 30*time.Millisecond))
	assert.Equal(t, before, echoCalls.Load())

	assert.Eventually(t, func() bool { return echoCalls.Load() == before+1 }, time.Second, 5*time.Millisecond)
}
