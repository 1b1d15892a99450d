// Package main is the entry point for the beer catalog API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beercatalog/internal/config"
	"beercatalog/internal/domain/beer"
	v1 "beercatalog/internal/infrastructure/http/v1"
	"beercatalog/internal/infrastructure/storage"
	"beercatalog/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting beer catalog server", "driver", cfg.Storage.Driver)

	// --- Storage ---
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalw("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer store.Close()

	// --- Domain ---
	service := beer.NewService(store.Repo, store.TxManager)

	var history beer.HistoryReader
	if store.Audit != nil {
		service.Hooks().OnAll(store.Audit.Hook())
		history = store.Audit
		log.Info("change audit enabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:      log,
		BeerService: service,
		History:     history,
		Ready:       store,
		Driver:      string(store.Driver),
		BeerPath:    cfg.BeerPath,
		Debug:       cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port, "path", cfg.BeerPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
