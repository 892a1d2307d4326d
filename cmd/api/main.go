package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"corpushub/internal/blobstore"
	"corpushub/internal/config"
	"corpushub/internal/http"
	"corpushub/internal/storage"
	"corpushub/internal/tasks"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	stores := storage.NewStores(db)

	blobs, err := blobstore.NewStore(cfg.BlobDir)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}
	slog.Info("Blob store initialized", "root", cfg.BlobDir)

	runner := tasks.NewRunner(stores, blobs)

	deps := &http.Deps{
		DB:     db,
		Stores: stores,
		Blobs:  blobs,
		Runner: runner,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
