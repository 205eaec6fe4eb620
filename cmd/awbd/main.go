package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/awb-extractor/internal/api"
	"github.com/joseph-ayodele/awb-extractor/internal/app"
	"github.com/joseph-ayodele/awb-extractor/internal/async"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/ingest"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to initialise", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer a.Close()

	if err := repository.HealthCheck(ctx, a.Repo, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// gRPC health endpoint for orchestrators
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: api.NewRouter(api.Deps{
			Processor:    a.Processor,
			Repo:         a.Repo,
			Export:       a.Export,
			Metrics:      a.Metrics,
			Logger:       logger,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			BatchWorkers: cfg.Batch.Workers,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("awbd listening", "http", cfg.Server.HTTPAddr, "grpc", cfg.Server.GRPCAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	var queue *async.ProcessorQueue
	if cfg.Server.InboxDir != "" {
		queue = async.NewProcessorQueue(a.Processor, logger,
			async.WithWorkers(cfg.Batch.Workers),
			async.WithQueueSize(cfg.Batch.QueueSize),
			async.WithProcessTimeout(cfg.Batch.ProcessTimeout),
			async.WithQueueMetrics(a.Metrics),
		)
		if err := watchInbox(ctx, cfg.Server.InboxDir, queue, logger); err != nil {
			logger.Error("failed to start inbox watcher", "dir", cfg.Server.InboxDir, "error", err)
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	grpcServer.GracefulStop()
}

// watchInbox feeds every new label file under dir into the queue for persistence.
func watchInbox(ctx context.Context, dir string, q async.Queue, logger *slog.Logger) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	go func() {
		for {
			select {
			case p, ok := <-paths:
				if !ok {
					return
				}
				f, err := ingest.LoadPath(p, ingest.DefaultMaxBytes)
				if err != nil {
					logger.Warn("inbox.load.failed", "path", p, "error", err)
					continue
				}
				job := async.Job{Document: f.Document(), Persist: true, SubmittedAt: time.Now(), TraceID: f.HashHex}
				if err := q.Enqueue(ctx, job); err != nil {
					logger.Warn("inbox.enqueue.failed", "path", p, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Error("inbox.watch.error", "error", err)
			}
		}
	}()
	return nil
}
