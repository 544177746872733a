// Package main provides a CLI tool for seeding the ledger with demo data.
// Every record goes through the ledger service, so numbering, allocation
// and audit behave exactly as they do behind the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"fishledger/internal/app"
	"fishledger/internal/config"
	"fishledger/internal/core/id"
	"fishledger/internal/core/security"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/ledger"
	"fishledger/pkg/logger"
)

type lotSeed struct {
	daysAgo int
	qty     string
	price   string
	notes   string
}

type saleSeed struct {
	daysAgo  int
	qty      string
	price    string
	discount string
	delivery string
	credit   bool
	paid     string
}

var (
	demoLots = []lotSeed{
		{daysAgo: 20, qty: "250", price: "4.20", notes: "Sea bass, morning catch"},
		{daysAgo: 14, qty: "180", price: "5.10", notes: "Sea bream"},
		{daysAgo: 7, qty: "320", price: "3.85", notes: "Mackerel"},
	}
	demoSales = []saleSeed{
		{daysAgo: 18, qty: "120", price: "7.50", discount: "0", delivery: "0"},
		{daysAgo: 12, qty: "160", price: "8.00", discount: "5", delivery: "25", credit: true, paid: "500"},
		{daysAgo: 6, qty: "90", price: "6.90", discount: "0", delivery: "15", credit: true},
		{daysAgo: 2, qty: "200", price: "6.40", discount: "2.5", delivery: "0"},
	}
)

func main() {
	configPath := flag.String("config", os.Getenv("FISHLEDGER_CONFIG"), "path to a YAML config file")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)
	rt, err := app.Start(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to start ledger", "error", err)
	}
	defer rt.Close()

	if err := seedDemoData(ctx, rt.Services.Ledger, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, svc *ledger.Service, log *logger.Logger) error {
	caller := security.NewCaller(id.New(), security.PermAll)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	supplierID := id.New()

	for _, s := range demoLots {
		lot, err := svc.RecordPurchase(ctx, caller, ledger.PurchaseInput{
			SupplierID:   supplierID,
			PurchaseDate: today.AddDate(0, 0, -s.daysAgo),
			QuantityKg:   types.MustDecimal(s.qty),
			PricePerKg:   types.MustDecimal(s.price),
			Notes:        s.notes,
		})
		if err != nil {
			return fmt.Errorf("purchase %s kg: %w", s.qty, err)
		}
		if _, err := svc.IssueReceipt(ctx, caller, receipt.OwnerPurchase, lot.ID); err != nil {
			return fmt.Errorf("receipt for %s: %w", lot.Number, err)
		}
		log.Infow("lot seeded", "number", lot.Number, "quantity_kg", lot.QuantityKg)
	}

	for _, s := range demoSales {
		sl, err := svc.RecordSale(ctx, caller, sale.Terms{
			CustomerID:         id.New(),
			SaleDate:           today.AddDate(0, 0, -s.daysAgo),
			QuantityKg:         types.MustDecimal(s.qty),
			PricePerKg:         types.MustDecimal(s.price),
			DiscountPercentage: types.MustDecimal(s.discount),
			DeliveryFee:        types.MustDecimal(s.delivery),
			IsCredit:           s.credit,
		})
		if err != nil {
			return fmt.Errorf("sale %s kg: %w", s.qty, err)
		}
		if s.paid != "" {
			if _, err := svc.RecordPayment(ctx, caller, sl.ID, ledger.PaymentInput{
				Amount:      types.MustDecimal(s.paid),
				PaymentDate: sl.Date,
			}); err != nil {
				return fmt.Errorf("payment on %s: %w", sl.Number, err)
			}
		}
		if _, err := svc.IssueReceipt(ctx, caller, receipt.OwnerSale, sl.ID); err != nil {
			return fmt.Errorf("receipt for %s: %w", sl.Number, err)
		}
		log.Infow("sale seeded", "number", sl.Number, "total", sl.TotalAmount, "lots", len(sl.Items))
	}
	return nil
}
