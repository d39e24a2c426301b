// Package main implements the entry point for the work item API server:
// an HTTP submission surface backed by a dispatch queue and a pool of
// asynchronous processing workers.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/workitem-api/internal/api"
	"github.com/phrazzld/workitem-api/internal/config"
	"github.com/phrazzld/workitem-api/internal/platform/logger"
	"github.com/phrazzld/workitem-api/internal/platform/pdfreport"
	"github.com/phrazzld/workitem-api/internal/platform/postgres"
	"github.com/phrazzld/workitem-api/internal/queue"
	"github.com/phrazzld/workitem-api/internal/service"
	"github.com/phrazzld/workitem-api/internal/store"
	"github.com/phrazzld/workitem-api/internal/worker"
)

// shutdownTimeout bounds how long in-flight HTTP requests may run after a
// termination signal before the listener is torn down.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run wires the application together and blocks until a termination signal
// arrives. Dependencies are constructed here and injected explicitly; no
// package-level state beyond the default slog logger.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"queue_capacity", cfg.Queue.Capacity,
		"worker_count", cfg.Worker.Count)

	itemStore, dbCleanup, err := newWorkItemStore(cfg, appLogger)
	if err != nil {
		return err
	}
	defer dbCleanup()

	dispatchQueue, err := newDispatchQueue(cfg, appLogger)
	if err != nil {
		return err
	}

	workItemSvc, err := service.NewWorkItemService(itemStore, dispatchQueue, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create work item service: %w", err)
	}

	reportSvc, err := service.NewReportService(itemStore, pdfreport.NewRenderer(appLogger), appLogger)
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}

	pool := worker.NewPool(
		itemStore,
		dispatchQueue,
		worker.DelaySimulator{PerUnit: cfg.Worker.DelayPerUnit},
		worker.PoolConfig{WorkerCount: cfg.Worker.Count},
		appLogger,
	)
	if err := pool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	router := api.NewRouter(
		api.NewWorkItemHandler(workItemSvc),
		api.NewReportHandler(reportSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrs := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrs <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		appLogger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErrs:
		return fmt.Errorf("http server failed: %w", err)
	}

	// Shutdown order: stop accepting submissions, then drain the workers,
	// then close the queue underneath them.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http server shutdown failed", "error", err)
	}

	pool.Stop()

	if err := dispatchQueue.Close(); err != nil {
		appLogger.Error("failed to close dispatch queue", "error", err)
	}

	appLogger.Info("server stopped")
	return nil
}

// newWorkItemStore selects the persistence backend from configuration: a
// Postgres-backed store (with migrations applied) when a database URL is set,
// otherwise the in-memory store for local development.
func newWorkItemStore(
	cfg *config.Config,
	appLogger *slog.Logger,
) (store.WorkItemStore, func(), error) {
	if cfg.Database.URL == "" {
		appLogger.Warn("no database configured, using in-memory work item store")
		return store.NewMemoryWorkItemStore(), func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database connection", "error", err)
		}
	}

	return postgres.NewWorkItemStore(db, appLogger), cleanup, nil
}

// newDispatchQueue selects the queue backend from configuration: an AMQP
// broker when a URL is set, otherwise the in-process channel-backed queue.
func newDispatchQueue(cfg *config.Config, appLogger *slog.Logger) (queue.Queue, error) {
	if cfg.Queue.URL == "" {
		appLogger.Info("no broker configured, using in-process dispatch queue",
			"capacity", cfg.Queue.Capacity)
		return queue.NewMemoryQueue(cfg.Queue.Capacity, appLogger), nil
	}

	// Prefetch one message per worker so the pool is never flooded with
	// unacked deliveries it cannot handle yet.
	q, err := queue.NewAMQPQueue(cfg.Queue.URL, cfg.Queue.Name, cfg.Worker.Count, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect dispatch queue: %w", err)
	}

	appLogger.Info("connected to AMQP dispatch queue", "queue", cfg.Queue.Name)
	return q, nil
}
