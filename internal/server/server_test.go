package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marketplace/pkg/ws"
)

func TestSchedulerTasks(t *testing.T) {
	s, err := Scheduler(ws.NewHub())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ws:gauge [every 15s]",
		"queue:prune-failed [0 3 * * *]",
	}, s.List())

	s, err = Scheduler(nil)
	require.NoError(t, err)
	assert.Len(t, s.List(), 1)
}

func TestSchedulerPruneWithoutStore(t *testing.T) {
	s, err := Scheduler(nil)
	require.NoError(t, err)

	// No failed job store is configured, so the nightly run is a no-op.
	s.Tick(context.Background(), time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC))
	s.Wait()
}

func TestAppCloseRunsNewestFirst(t *testing.T) {
	var order []int
	app := &App{closers: []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}}
	app.Close()
	assert.Equal(t, []int{2, 1}, order)
}
