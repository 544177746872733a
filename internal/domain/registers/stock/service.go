package stock

import (
	"context"
	"fmt"

	"fishledger/internal/core/types"
	"fishledger/pkg/logger"
)

// Service answers stock availability questions.
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Current is total purchased minus total sold, floored at zero.
func (s *Service) Current(ctx context.Context) (types.Kilograms, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return types.Zero(), fmt.Errorf("stock totals: %w", err)
	}
	return types.NonNegative(totals.PurchasedKg.Sub(totals.SoldKg)), nil
}

// Available is the quantity a new sale can draw from. Equal to Current.
func (s *Service) Available(ctx context.Context) (types.Kilograms, error) {
	return s.Current(ctx)
}

// Lots returns per-lot balances for reporting and export.
func (s *Service) Lots(ctx context.Context) ([]LotBalance, error) {
	lots, err := s.repo.LotBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("lot balances: %w", err)
	}
	return lots, nil
}

// Reconciliation compares the sale-level and item-level bookkeeping.
type Reconciliation struct {
	PurchasedKg types.Kilograms `json:"purchasedKg"`
	SoldKg      types.Kilograms `json:"soldKg"`
	AllocatedKg types.Kilograms `json:"allocatedKg"`
	Discrepancy types.Kilograms `json:"discrepancyKg"`
}

// Consistent reports whether every sold kilogram is attributed to a lot.
func (r Reconciliation) Consistent() bool {
	return r.Discrepancy.IsZero() && r.SoldKg.LessThanOrEqual(r.PurchasedKg)
}

// Reconcile checks that the sum of sale quantities matches the sum of sale items.
func (s *Service) Reconcile(ctx context.Context) (Reconciliation, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("stock totals: %w", err)
	}

	rec := Reconciliation{
		PurchasedKg: totals.PurchasedKg,
		SoldKg:      totals.SoldKg,
		AllocatedKg: totals.AllocatedKg,
		Discrepancy: totals.SoldKg.Sub(totals.AllocatedKg),
	}
	if !rec.Consistent() {
		logger.Error(ctx, "stock bookkeeping is inconsistent",
			"purchased_kg", rec.PurchasedKg,
			"sold_kg", rec.SoldKg,
			"allocated_kg", rec.AllocatedKg)
	}
	return rec, nil
}
