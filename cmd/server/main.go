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

	"github.com/gorilla/mux"

	grpcapi "rentaltoll-backend/internal/api/grpc"
	httpapi "rentaltoll-backend/internal/api/http"
	"rentaltoll-backend/internal/app"
	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/security"
)

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
	logger.Info("Starting rental toll backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.ServerAddress(), "grpc_address", cfg.GRPCAddress(), "driver", cfg.Database.Driver)
	logger.Info("Import configuration", "timezone", cfg.Import.Timezone, "max_upload_mb", cfg.Server.MaxUploadMB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	svcs := app.NewServices(store, cfg)

	// Initialize Security
	var tokenManager security.TokenManager
	if cfg.Auth.Enabled {
		tokenManager = security.NewTokenManager(cfg.Auth.TokenSecret)
		logger.Info("Bearer authentication enabled")
	}

	// HTTP API
	loc := cfg.ImportLocation()
	router := mux.NewRouter()
	httpapi.RegisterRoutes(router, httpapi.Handlers{
		Rentals: httpapi.NewRentalHandler(svcs.Rentals, loc),
		Tolls:   httpapi.NewTollHandler(svcs.Tolls, loc, cfg.MaxUploadBytes()),
		Tickets: httpapi.NewTicketHandler(svcs.Tickets, loc),
		Ledger:  httpapi.NewLedgerHandler(svcs.Ledger, svcs.Rentals),
		Store:   store,
		Tokens:  tokenManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// gRPC health + reflection
	var healthServer *grpcapi.HealthServer
	if addr := cfg.GRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		healthServer = grpcapi.NewHealthServer(store, tokenManager)
		if err := healthServer.Check(ctx); err != nil {
			logger.Warn("Store not ready at startup", "error", err)
		}
		go healthServer.Watch(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := healthServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if healthServer != nil {
		healthServer.Shutdown()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
