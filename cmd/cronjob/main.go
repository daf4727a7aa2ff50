package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ev-rental-ledger/internal/app"
	"ev-rental-ledger/internal/config"
	"ev-rental-ledger/internal/jobs"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/scheduler"
	"ev-rental-ledger/internal/service"
)

const notifierDrainTimeout = 30 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'report-overdue-rentals', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EV Rental Ledger Cronjob Runner...", "log_level", cfg.Log.Level)

	if cfg.Storage.Type == config.StorageMemory {
		logger.Warn("Cronjob runner is using in-memory storage and will not see the server's agreements")
	}

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
	flushNotifications := func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifierDrainTimeout)
		defer cancel()
		if err := stopNotifier(ctx); err != nil {
			logger.Error("Notification queue did not drain", "error", err)
		}
	}

	ledgerSvc := service.NewRentalLedgerService(store, notifier, nil)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(ledgerSvc, notifier, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		ok := runJobOnce(jobRunner, *runOnce)
		flushNotifications()
		if !ok {
			closeStore()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	flushNotifications()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once. It reports false for unknown job names.
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "report-overdue-rentals":
		jobRunner.ReportOverdueRentals()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - report-overdue-rentals\n")
		fmt.Printf("  - all\n")
		return false
	}
	return true
}
