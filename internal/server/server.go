// Package server wires configuration, storage and background machinery
// together and runs the HTTP and gRPC listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marketplace/app/jobs"
	"github.com/shashiranjanraj/marketplace/app/listeners"
	"github.com/shashiranjanraj/marketplace/app/routes"
	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/internal/kernel"
	"github.com/shashiranjanraj/marketplace/pkg/cache"
	"github.com/shashiranjanraj/marketplace/pkg/database"
	"github.com/shashiranjanraj/marketplace/pkg/event"
	"github.com/shashiranjanraj/marketplace/pkg/grpc"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/mail"
	"github.com/shashiranjanraj/marketplace/pkg/metrics"
	"github.com/shashiranjanraj/marketplace/pkg/middleware"
	"github.com/shashiranjanraj/marketplace/pkg/queue"
	"github.com/shashiranjanraj/marketplace/pkg/schedule"
	"github.com/shashiranjanraj/marketplace/pkg/storage"
	"github.com/shashiranjanraj/marketplace/pkg/workerpool"
	"github.com/shashiranjanraj/marketplace/pkg/ws"
)

const shutdownTimeout = 15 * time.Second

// App holds the shared handles opened by Boot.
type App struct {
	DB      *gorm.DB
	closers []func()
}

// Boot loads config and opens everything both the API server and a
// standalone queue worker need: logging sinks, the database, Redis, the
// queue driver, job registrations, storage and mail.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	app := &App{}

	if uri := config.MongoLogURI(); uri != "" {
		closeLog, err := logger.AttachMongo(uri, config.MongoLogDatabase())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			app.closers = append(app.closers, closeLog)
		}
	}

	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, func() { _ = database.Close(db) })
	if err := metrics.InstrumentGorm(db); err != nil {
		logger.Warn("gorm metrics disabled", "error", err)
	}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable; order cache disabled", "error", err)
	} else {
		app.closers = append(app.closers, func() { _ = cache.Close() })
	}

	switch {
	case config.QueueDriver() == "redis" && cache.RDB != nil:
		queue.SetDriver(queue.NewRedisDriver(ctx, cache.RDB))
	case config.QueueDriver() == "redis":
		logger.Warn("QUEUE_DRIVER=redis but redis is unavailable; using in-memory queue")
		queue.SetDriver(queue.NewMemoryDriver())
	default:
		queue.SetDriver(queue.NewMemoryDriver())
	}
	queue.UseDB(db)
	jobs.Register(db)

	if err := storage.Connect(ctx); err != nil {
		logger.Warn("storage disk not configured; falling back to local", "error", err)
	}
	mail.Use(mail.FromConfig())

	return app, nil
}

// Close releases everything Boot opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Scheduler builds the maintenance schedule run inside the API process.
func Scheduler(hub *ws.Hub) (*schedule.Scheduler, error) {
	s := schedule.New()
	if hub != nil {
		s.Every(15*time.Second, "ws:gauge", func(context.Context) error {
			metrics.WSConnections.Set(float64(hub.ClientCount()))
			return nil
		})
	}

	retention := time.Duration(config.FailedJobRetentionDays()) * 24 * time.Hour
	err := s.Cron("0 3 * * *", "queue:prune-failed", func(ctx context.Context) error {
		n, err := queue.PruneFailed(ctx, retention)
		if err != nil {
			return err
		}
		logger.Info("pruned failed jobs", "deleted", n)
		return nil
	})
	return s, err
}

// Start boots the application and serves HTTP and gRPC until ctx is
// cancelled, then drains both listeners, the queue workers and the event
// pool before returning.
func Start(ctx context.Context) error {
	app, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	pool := workerpool.New(config.QueueWorkers() * 2)
	event.UsePool(pool)
	defer pool.Shutdown()

	hub := ws.NewHub()
	ws.SetCheckOrigin(middleware.OriginChecker(middleware.ParseOrigins(config.CORSOrigins())))
	listeners.Register(&listeners.Orders{Publisher: hub})

	httpKernel, err := kernel.NewHTTPKernel(routes.Deps{DB: app.DB, Hub: hub})
	if err != nil {
		return err
	}
	sched, err := Scheduler(hub)
	if err != nil {
		return err
	}
	rpc := grpc.New(func(ctx context.Context) error { return database.Ping(app.DB) })

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           httpKernel.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	workers := queue.StartWorkers(gctx, config.QueueWorkers())
	g.Go(func() error {
		workers.Wait()
		return nil
	})
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		sched.Run(gctx)
		return nil
	})
	g.Go(func() error {
		rpc.Probe(gctx, 10*time.Second)
		return nil
	})
	g.Go(func() error {
		return rpc.Serve(gctx, config.GRPCPort())
	})
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	event.Flush()
	return err
}

// Work runs only the queue workers, for deployments that split them from
// the API process. Jobs reach it through the Redis driver.
func Work(ctx context.Context, n int) error {
	app, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if config.QueueDriver() != "redis" || cache.RDB == nil {
		logger.Warn("queue:work with the in-memory driver only sees jobs dispatched by this process")
	}
	if n < 1 {
		n = config.QueueWorkers()
	}
	queue.StartWorkers(ctx, n).Wait()
	return nil
}
