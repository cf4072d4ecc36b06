// Package event is an in-process publish/subscribe dispatcher.
//
// Services fire events after their transaction commits; listeners react
// with side effects (queue jobs, websocket pushes, metrics).
//
//	event.Listen("order.placed", func(ctx context.Context, p any) { ... })
//	event.FireAsync(ctx, "order.placed", payload)
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	pool     *workerpool.Pool
)

// Listen registers a handler for the given event name.
func Listen(name string, h Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], h)
}

// UsePool routes FireAsync through p. Without a pool each async handler
// gets its own goroutine.
func UsePool(p *workerpool.Pool) {
	mu.Lock()
	defer mu.Unlock()
	pool = p
}

func snapshot(name string) ([]Handler, *workerpool.Pool) {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[name]))
	copy(hs, handlers[name])
	return hs, pool
}

// Fire runs every listener of name on the calling goroutine.
func Fire(ctx context.Context, name string, payload any) {
	hs, _ := snapshot(name)
	for _, h := range hs {
		h(ctx, payload)
	}
}

// FireAsync hands every listener of name to the worker pool and returns.
// The listeners see a context that is detached from ctx's cancellation but
// keeps its values, so request-scoped loggers still work.
func FireAsync(ctx context.Context, name string, payload any) {
	hs, p := snapshot(name)
	if len(hs) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)

	for _, h := range hs {
		h := h
		task := func() { h(bg, payload) }
		if p == nil {
			go task()
			continue
		}
		err := p.Submit(task)
		if errors.Is(err, workerpool.ErrPoolFull) {
			logger.WithCtx(ctx).Warn("event: pool full, running listener on its own goroutine", "event", name)
			go task()
		} else if err != nil {
			logger.WithCtx(ctx).Error("event: listener dropped", "event", name, "error", err)
		}
	}
}

// Flush removes all listeners. Used by tests.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
