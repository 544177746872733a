// Package main is the entry point for the fish ledger API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fishledger/internal/app"
	"fishledger/internal/config"
	v1 "fishledger/internal/infrastructure/http/v1"
	"fishledger/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("FISHLEDGER_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting fishledger server", "env", cfg.App.Env)

	rt, err := app.Start(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to start ledger", "error", err)
	}
	defer rt.Close()

	routerCfg := v1.RouterConfig{
		Logger:       log,
		Ledger:       rt.Services.Ledger,
		Stock:        rt.Services.Stock,
		Reports:      rt.Services.Reports,
		HealthChecks: rt.HealthChecks(),
	}
	if rt.Metrics != nil {
		routerCfg.Metrics = rt.Metrics
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      v1.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
