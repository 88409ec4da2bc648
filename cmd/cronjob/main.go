package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rentaltoll-backend/internal/app"
	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/jobs"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a job once and exit ("+jobs.JobRematchUnmatchedTolls+", "+jobs.JobReportOutstandingBalances+" or all)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting rental toll cronjob runner...", "log_level", cfg.Log.Level)

	store, closeStore, err := app.OpenStore(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	svcs := app.NewServices(store, cfg)
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Toll:   svcs.Tolls,
		Ledger: svcs.Ledger,
	}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if strings.EqualFold(*runOnce, "all") {
			jobRunner.RunAll()
			return
		}
		if err := jobRunner.Run(*runOnce); err != nil {
			logger.Error("Unknown job name", "job", *runOnce)
			fmt.Printf("Available jobs:\n")
			for _, name := range jobRunner.Names() {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Printf("  - all\n")
			os.Exit(1)
		}
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner, cfg.ImportLocation())
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "jobs", cronScheduler.Entries(), "next", cronScheduler.Next())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped")
}
