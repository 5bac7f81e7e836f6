package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/mycity/intake/api"
	"github.com/mycity/intake/internal/bootstrap"
	"github.com/mycity/intake/internal/config"
	"github.com/mycity/intake/internal/db"
	"github.com/mycity/intake/internal/jobs"
	"github.com/mycity/intake/internal/notify"
	"github.com/mycity/intake/internal/repository/sqlite"
	"github.com/mycity/intake/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const (
	dbConnectAttempts = 5
	dbConnectBackoff  = 5 * time.Second
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	log.Printf("Starting MyCity intake server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection, retrying a bounded number of times with fixed
	// backoff before giving up
	var d *db.DB
	for attempt := 1; ; attempt++ {
		d, err = db.New(ctx, cfg.DatabasePath, logger)
		if err == nil {
			break
		}
		if attempt >= dbConnectAttempts {
			log.Fatalf("Failed to open DB after %d attempts: %v", attempt, err)
		}
		log.Printf("DB connect attempt %d failed, retrying in %s: %v", attempt, dbConnectBackoff, err)
		time.Sleep(dbConnectBackoff)
	}

	if err := db.Migrate(ctx, d); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(d, logger)
	if err := bootstrap.EnsureInitialAdmin(ctx, repo, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}

	// Background notification delivery
	sender := notify.NewSender(cfg.Notifier, logger)
	jobsRepo := jobs.NewRepository(d)
	handlers := map[string]jobs.Handler{
		notify.JobTypeStatusChange: notify.StatusChangeHandler(sender),
	}
	pool := jobs.NewWorkerPool(jobsRepo, handlers, logger, cfg.WorkerCount)
	pool.Start(ctx)

	photos := storage.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)

	handler := api.SetupRoutes(cfg, version, buildTime, d, photos, pool)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Drain workers, then close the database
	pool.Stop()
	if err := d.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
