package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shashiranjanraj/marketplace/pkg/workerpool"
	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	Flush()
	defer Flush()

	var got []string
	Listen("order.placed", func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	Listen("order.placed", func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	Listen("order.cancelled", func(_ context.Context, _ any) { got = append(got, "never") })

	Fire(context.Background(), "order.placed", "42")

	assert.Equal(t, []string{"a:42", "b:42"}, got)
}

func TestFireAsyncUsesPoolAndSurvivesCancel(t *testing.T) {
	Flush()
	defer Flush()

	p := workerpool.New(2)
	defer p.Shutdown()
	UsePool(p)
	defer UsePool(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var ctxErr error
	Listen("order.placed", func(ctx context.Context, _ any) {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		ctxErr = ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	FireAsync(ctx, "order.placed", nil)
	cancel()

	wg.Wait()
	assert.NoError(t, ctxErr)
}
