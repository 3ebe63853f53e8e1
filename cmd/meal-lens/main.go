package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"meal-lens/internal/config"
	"meal-lens/internal/llm"
	"meal-lens/internal/logger"
	"meal-lens/internal/server"
	"meal-lens/internal/storage"
)

var (
	host    = flag.String("host", "", "Host address (overrides MEAL_LENS_HOST)")
	port    = flag.Int("port", 0, "Port (overrides default 8012)")
	baseURL = flag.String("base-url", "", "Externally visible base URL (overrides MEAL_LENS_BASE_URL)")
	dbPath  = flag.String("db-path", "", "Analysis history database path (overrides MEAL_LENS_DB_PATH)")
	version = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("meal-lens version 1.0.0")
		os.Exit(0)
	}

	logger.Init()
	defer logger.Sync()

	cfg := config.Load()
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	stor, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open analysis history storage", zap.Error(err))
	}

	srv, err := server.New(cfg, llm.NewClient(cfg.Upstream), stor)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down")
	cancel()
	if err := srv.Stop(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
