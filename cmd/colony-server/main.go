package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daniacca/colony/internal/colony"
	"github.com/daniacca/colony/internal/logging"
)

func main() {
	cfg := mustLoadServerConfig()
	logger := logging.New(cfg.LogLevel)

	logger.Infof("Starting colony-server: addr=%s stream_interval=%v log_level=%s", cfg.Addr, cfg.StreamInterval, logger.Level())

	traits, err := cfg.Settings.TraitTable()
	if err != nil {
		logger.Fatalf("Invalid species configuration: %v", err)
	}

	srv := NewServer(logger, traits, cfg.StreamInterval)

	if cfg.DefaultWorld != "" {
		topology, err := cfg.Settings.Topology()
		if err != nil {
			logger.Fatalf("Invalid topology: %v", err)
		}
		if _, err := srv.CreateWorld(colony.WorldID(cfg.DefaultWorld), topology); err != nil {
			logger.Fatalf("Failed to create default world: %v", err)
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("colony-server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP shutdown: %v", err)
	}
	if err := srv.Close(); err != nil {
		logger.Warnf("Closing notifiers: %v", err)
	}
}
