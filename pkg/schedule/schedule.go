// Package schedule runs periodic maintenance tasks inside the server
// process.
//
//	s := schedule.New()
//	s.Every(15*time.Second, "ws:gauge", recordConnections)
//	s.Cron("0 3 * * *", "queue:prune-failed", pruneFailedJobs)
//	go s.Run(ctx)
//
// A task never overlaps with itself; a tick that finds it still running is
// skipped.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/marketplace/pkg/logger"
)

// Task is one unit of scheduled work.
type Task func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	cron     []string // five fields, nil for interval entries
	task     Task

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
}

func New() *Scheduler { return &Scheduler{} }

// Every runs task every interval, starting on the first tick.
func (s *Scheduler) Every(interval time.Duration, name string, task Task) {
	s.add(&entry{name: name, interval: interval, task: task})
}

// Cron runs task on minutes matching a five-field expression
// (minute hour day-of-month month day-of-week). Each field accepts *, N,
// */N and N-M.
func (s *Scheduler) Cron(expr, name string, task Task) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("schedule: %q: want 5 fields, got %d", expr, len(fields))
	}
	for _, f := range fields {
		if _, err := matchField(f, 0); err != nil {
			return fmt.Errorf("schedule: %q: %w", expr, err)
		}
	}
	s.add(&entry{name: name, cron: fields, task: task})
	return nil
}

func (s *Scheduler) add(e *entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// Run ticks every second until ctx ends, then waits for running tasks.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("schedule: started", "tasks", len(s.List()))
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: stopped")
			return
		case now := <-t.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick starts every task due at now.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	for _, e := range current {
		if s.claim(e, now) {
			s.wg.Add(1)
			go s.execute(ctx, e)
		}
	}
}

// Wait blocks until every started task has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) claim(e *entry, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !due(e, now) {
		return false
	}
	if e.running {
		logger.Warn("schedule: previous run still active, skipping", "task", e.name)
		return false
	}
	e.running = true
	e.lastRun = now
	return true
}

func (s *Scheduler) execute(ctx context.Context, e *entry) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("schedule: task panicked", "task", e.name, "panic", r)
		}
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	start := time.Now()
	if err := e.task(ctx); err != nil {
		logger.Error("schedule: task failed", "task", e.name, "error", err)
		return
	}
	logger.Debug("schedule: task done", "task", e.name, "duration_ms", time.Since(start).Milliseconds())
}

func due(e *entry, now time.Time) bool {
	if e.cron == nil {
		return e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
	}
	// Fire once per matching minute.
	if !e.lastRun.IsZero() && e.lastRun.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) {
		return false
	}
	values := []int{now.Minute(), now.Hour(), now.Day(), int(now.Month()), int(now.Weekday())}
	for i, f := range e.cron {
		if ok, _ := matchField(f, values[i]); !ok {
			return false
		}
	}
	return true
}

func matchField(field string, val int) (bool, error) {
	switch {
	case field == "*":
		return true, nil
	case strings.HasPrefix(field, "*/"):
		step, err := strconv.Atoi(field[2:])
		if err != nil || step <= 0 {
			return false, fmt.Errorf("bad step %q", field)
		}
		return val%step == 0, nil
	case strings.Contains(field, "-"):
		lo, hi, _ := strings.Cut(field, "-")
		l, err1 := strconv.Atoi(lo)
		h, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || l > h {
			return false, fmt.Errorf("bad range %q", field)
		}
		return val >= l && val <= h, nil
	default:
		n, err := strconv.Atoi(field)
		if err != nil {
			return false, fmt.Errorf("bad value %q", field)
		}
		return n == val, nil
	}
}

// List describes every registered task for logs and the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := strings.Join(e.cron, " ")
		if e.cron == nil {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s [%s]", e.name, freq))
	}
	return out
}
