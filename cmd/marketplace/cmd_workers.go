package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/internal/server"
	"github.com/shashiranjanraj/marketplace/pkg/cache"
	"github.com/shashiranjanraj/marketplace/pkg/queue"
)

var queueWorkersFlag int

// marketplace queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers without the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Println("Queue worker started. Press Ctrl+C to stop.")
		if err := server.Work(ctx, queueWorkersFlag); err != nil {
			return err
		}
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

// marketplace queue:retry <id>
var queueRetryCmd = &cobra.Command{
	Use:   "queue:retry <failed-job-id>",
	Short: "Re-dispatch a job from the failed_jobs table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid failed job id %q", args[0])
		}

		ctx := context.Background()
		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if config.QueueDriver() != "redis" || cache.RDB == nil {
			return fmt.Errorf("queue:retry needs QUEUE_DRIVER=redis and a reachable redis")
		}
		if err := queue.Retry(ctx, uint(id)); err != nil {
			return err
		}
		fmt.Printf("Failed job %d queued again.\n", id)
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers (default QUEUE_WORKERS)")
}
