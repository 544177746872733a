package dto

import (
	"fishledger/internal/core/id"
	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/documents/sale"
	"fishledger/internal/domain/ledger"
	"fishledger/internal/domain/registers/stock"
)

// PurchaseResponse is a lot with its derived total cost.
type PurchaseResponse struct {
	*purchase.Lot
	TotalCost types.Money `json:"totalCost"`
}

// FromPurchase builds a PurchaseResponse.
func FromPurchase(l *purchase.Lot) PurchaseResponse {
	return PurchaseResponse{Lot: l, TotalCost: l.TotalCost()}
}

// SaleResponse is a sale with what is still owed on it.
type SaleResponse struct {
	*sale.Sale
	Outstanding types.Money `json:"outstanding"`
}

// FromSale builds a SaleResponse.
func FromSale(s *sale.Sale) SaleResponse {
	return SaleResponse{Sale: s, Outstanding: sale.AccountOf(s).OutstandingBalance()}
}

// BalanceResponse is the outstanding balance of one sale.
type BalanceResponse struct {
	SaleID      id.ID       `json:"saleId"`
	Outstanding types.Money `json:"outstanding"`
}

// PaymentResponse is a stored payment and the balance left after it.
type PaymentResponse struct {
	Payment     sale.Payment `json:"payment"`
	Outstanding types.Money  `json:"outstanding"`
}

// FromPaymentResult builds a PaymentResponse.
func FromPaymentResult(r *ledger.PaymentResult) PaymentResponse {
	return PaymentResponse{Payment: r.Payment, Outstanding: r.Outstanding}
}

// StockResponse is the current stock position.
type StockResponse struct {
	CurrentKg   types.Kilograms `json:"currentKg"`
	AvailableKg types.Kilograms `json:"availableKg"`
}

// LotResponse is one lot balance with its remaining capacity.
type LotResponse struct {
	stock.LotBalance
	RemainingKg    types.Kilograms `json:"remainingKg"`
	RemainingValue types.Money     `json:"remainingValue"`
}

// FromLotBalances builds lot responses in the given order.
func FromLotBalances(lots []stock.LotBalance) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, LotResponse{
			LotBalance:     l,
			RemainingKg:    l.RemainingKg(),
			RemainingValue: l.RemainingValue(),
		})
	}
	return out
}

// ListResponse wraps a collection.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewList builds a ListResponse.
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// SuccessResponse acknowledges an action with no entity to return.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
