package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override env vars
	port := flag.String("port", cfg.Server.Port, "Server port")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	storageDir := flag.String("storage", cfg.Storage.Dir, "Directory for persisted state (empty keeps it in memory)")
	snapshotURL := flag.String("snapshot-url", cfg.Snapshot.URL, "URL of the bundled filesystem snapshot")
	snapshotDir := flag.String("snapshot-dir", cfg.Snapshot.Dir, "Directory to build the bundled filesystem from")
	appsFile := flag.String("apps", cfg.Registry.AppsFile, "Application definitions file (.yaml, .toml or .json)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Storage.Dir = *storageDir
	cfg.Snapshot.URL = *snapshotURL
	cfg.Snapshot.Dir = *snapshotDir
	cfg.Registry.AppsFile = *appsFile
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Serve the built-in tree until the snapshot arrives
	go srv.Hydrate(ctx)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		cancel()
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
