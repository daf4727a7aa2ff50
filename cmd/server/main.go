package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	api "ev-rental-ledger/internal/api/grpc"
	"ev-rental-ledger/internal/api/grpc/interceptor"
	httpapi "ev-rental-ledger/internal/api/http"
	"ev-rental-ledger/internal/app"
	"ev-rental-ledger/internal/config"
	"ev-rental-ledger/internal/jobs"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/metrics"
	"ev-rental-ledger/internal/scheduler"
	"ev-rental-ledger/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EV Rental Ledger...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress(), "storage", cfg.Storage.Type)

	// Initialize storage
	store, closeStore, err := app.OpenStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	notifier, stopNotifier, err := app.NewNotifier(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	ledgerSvc := service.NewRentalLedgerService(store, notifier, ledgerMetrics)

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewRequestInterceptor().Unary()),
	)
	api.RegisterRentalLedgerServer(grpcServer, api.NewRentalLedgerHandler(ledgerSvc))

	// No reflection: the service descriptor is hand written and has no
	// registered .proto file. See api.RentalLedgerServiceDesc.

	// Set up HTTP server
	routerOpts := httpapi.RouterOptions{MetricsPath: cfg.Metrics.Path}
	if cfg.Metrics.Enabled {
		routerOpts.Gatherer = registry
	}
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(httpapi.NewRentalLedgerHandler(ledgerSvc), routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.InProcess {
		cronScheduler, err = scheduler.NewScheduler(jobs.NewJobRunner(ledgerSvc, notifier, cfg))
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal or a server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	// Graceful shutdown
	logger.Info("Shutting down...")
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	if err := stopNotifier(ctx); err != nil {
		logger.Error("Notification queue did not drain", "error", err)
	}
	logger.Info("EV Rental Ledger stopped. Goodbye!")
}
