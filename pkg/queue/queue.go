// Package queue runs background jobs with retries.
//
// Jobs are JSON-serialised into an envelope so the same dispatch code works
// for the in-memory driver and the Redis driver:
//
//	type SendOrderMailJob struct{ OrderID uint }
//	func (j *SendOrderMailJob) Handle(ctx context.Context) error { ... }
//
//	queue.Register("*jobs.SendOrderMailJob", func() queue.Job { return &SendOrderMailJob{} })
//	queue.Dispatch(ctx, &SendOrderMailJob{OrderID: 7})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// FailedJob holds information about a job that failed.
type FailedJob struct {
	Type     string
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver is implemented by drivers that can hold a job until a
// point in time.
type DelayedDriver interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  time.Duration
}

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	maxRetry: 3,
	backoff:  time.Second,
	driver:   NewMemoryDriver(),
}

// SetDriver swaps the underlying queue driver.
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// SetMaxRetry sets how many attempts a job gets before it is recorded as failed.
func SetMaxRetry(n int) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.maxRetry = n
}

// SetBackoff sets the base delay between attempts; attempt n waits n×d.
func SetBackoff(d time.Duration) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.backoff = d
}

// Register makes a job type available for deserialization by name. The
// name must be the %T of the dispatched value.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue immediately.
func Dispatch(ctx context.Context, job Job) error {
	return defaultManager.push(ctx, job, 0)
}

// DispatchAfter pushes job onto the queue once delay has elapsed.
func DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	return defaultManager.push(ctx, job, delay)
}

func encode(job Job) (string, []byte, error) {
	typeName := fmt.Sprintf("%T", job)

	payload, err := json.Marshal(job)
	if err != nil {
		return typeName, nil, fmt.Errorf("queue: marshal job %s: %w", typeName, err)
	}
	env, err := json.Marshal(envelope{Type: typeName, Payload: payload})
	if err != nil {
		return typeName, nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return typeName, env, nil
}

func (m *Manager) push(ctx context.Context, job Job, delay time.Duration) error {
	_, env, err := encode(job)
	if err != nil {
		return err
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	if delay <= 0 {
		return d.Push(ctx, env)
	}
	if dd, ok := d.(DelayedDriver); ok {
		return dd.PushDelayed(ctx, env, delay)
	}

	go func() {
		t := time.NewTimer(delay)
		defer t.Stop()
		<-t.C
		if err := d.Push(context.WithoutCancel(ctx), env); err != nil {
			logger.Error("queue: delayed dispatch failed", "error", err)
		}
	}()
	return nil
}

// StartWorkers launches n workers that process jobs until ctx is cancelled.
// The returned WaitGroup completes once every worker has exited.
func StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			defaultManager.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	return &wg
}

func (m *Manager) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}

		m.process(ctx, raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job, env.Type)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, typeName string) {
	m.mu.RLock()
	maxRetry, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()
	if maxRetry < 1 {
		maxRetry = 1
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= maxRetry; attempt++ {
		if err := job.Handle(ctx); err != nil {
			lastErr = err
			logger.Warn("queue: job failed", "type", typeName, "attempt", attempt, "error", err)
			if attempt < maxRetry {
				sleep(ctx, time.Duration(attempt)*backoff)
			}
			continue
		}
		metrics.RecordQueueJob(typeName, "success", start)
		logger.Debug("queue: job processed", "type", typeName)
		return
	}

	metrics.RecordQueueJob(typeName, "failed", start)
	m.persistFailed(ctx, job, typeName, lastErr, maxRetry)
	logger.Error("queue: job exhausted retries", "type", typeName, "error", lastErr)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// FailedJobs returns a snapshot of the jobs that failed in this process.
func FailedJobs() []FailedJob {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	out := make([]FailedJob, len(defaultManager.failed))
	copy(out, defaultManager.failed)
	return out
}
