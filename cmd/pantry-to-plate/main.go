package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pantry-to-plate/internal/catalog"
	"pantry-to-plate/internal/config"
	"pantry-to-plate/internal/logger"
	"pantry-to-plate/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "pantry-to-plate")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// A malformed catalog is fatal before any evaluation starts.
	cat, err := catalog.Load(cfg.Engine.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load rule catalog",
			zap.String("catalog_path", cfg.Engine.CatalogPath),
			zap.Error(err),
		)
	}

	svc, err := service.NewConstraintService(cfg, cat, log)
	if err != nil {
		log.Fatal("Failed to create constraint service",
			zap.Error(err),
		)
	}
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceErrChan := make(chan error, 1)
	go func() {
		if err := svc.Start(ctx); err != nil {
			serviceErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
	case err := <-serviceErrChan:
		log.Fatal("Service error",
			zap.Error(err),
		)
	}

	log.Info("Constraint service stopped")
}
