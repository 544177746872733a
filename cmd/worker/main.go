// Package main is the entry point for the fish ledger background worker.
// It periodically reconciles sale quantities against their lot allocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fishledger/internal/app"
	"fishledger/internal/config"
	"fishledger/internal/domain/registers/stock"
	"fishledger/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("FISHLEDGER_CONFIG"), "path to a YAML config file")
	interval := flag.Duration("interval", 5*time.Minute, "reconciliation interval")
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

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting fishledger worker")

	rt, err := app.Start(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to start ledger", "error", err)
	}
	defer rt.Close()

	worker := NewReconcileWorker(rt.Services.Stock, log, *interval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// ReconcileWorker checks stock bookkeeping on a fixed interval.
type ReconcileWorker struct {
	stock    *stock.Service
	log      *logger.Logger
	interval time.Duration
}

func NewReconcileWorker(svc *stock.Service, log *logger.Logger, interval time.Duration) *ReconcileWorker {
	return &ReconcileWorker{
		stock:    svc,
		log:      log.WithComponent("reconcile"),
		interval: interval,
	}
}

// Run reconciles once immediately, then on every tick until ctx is done.
func (w *ReconcileWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *ReconcileWorker) check(ctx context.Context) {
	rec, err := w.stock.Reconcile(ctx)
	if err != nil {
		w.log.Errorw("reconciliation failed", "error", err)
		return
	}
	if !rec.Consistent() {
		// stock.Service already logged the figures at error level
		return
	}
	w.log.Debugw("stock consistent",
		"purchased_kg", rec.PurchasedKg,
		"sold_kg", rec.SoldKg)
}
