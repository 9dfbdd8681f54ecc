package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"skyline/flightsync/internal/api"
	"skyline/flightsync/internal/auth"
	"skyline/flightsync/internal/config"
	"skyline/flightsync/internal/jobs"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/middleware"
	"skyline/flightsync/internal/routes"
)

// @title Flight Sync API
// @version 1.0
// @description Collects departure schedules from the flight data provider and serves them by date, month and route.
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Flight sync starting up",
		"environment", cfg.AppEnv,
		"store_backend", cfg.StoreBackend,
		"redis_enabled", cfg.RedisEnabled,
		"supported_airports", cfg.SupportedAirports,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := api.InitDependencies(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}
	defer deps.Close()

	var signer *auth.TokenSigner
	if cfg.JWTSecret != "" {
		signer = auth.NewTokenSigner([]byte(cfg.JWTSecret))
	}

	router := routes.RegisterRoutes(deps, routes.RouterOptions{
		UpSince:     time.Now(),
		Signer:      signer,
		Gatherer:    prometheus.DefaultGatherer,
		RateLimiter: middleware.NewIPRateLimiter(rate.Limit(5), 20, "127.0.0.1"),
	})

	jobs.InitializeJobs(ctx, deps.CollectionJob, cfg.CollectionScheduleEnabled, cfg.CollectionInterval)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err.Error())
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logging.Info("Received signal", "signal", sig.String())

	// stop the scheduled job first so an in-flight run sees cancellation
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", "error", err.Error())
	}
	logging.Info("Server stopped")
}
