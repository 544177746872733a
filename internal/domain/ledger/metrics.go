package ledger

import (
	"fishledger/internal/core/types"
)

// Metrics observes ledger outcomes.
type Metrics interface {
	SaleRecorded(quantityKg types.Kilograms)
	AllocationRejected()
	PaymentRecorded(amount types.Money)
	PaymentRejected()
	ReceiptTransition(action string)
}

// NopMetrics discards observations.
type NopMetrics struct{}

func (NopMetrics) SaleRecorded(types.Kilograms) {}
func (NopMetrics) AllocationRejected()          {}
func (NopMetrics) PaymentRecorded(types.Money)  {}
func (NopMetrics) PaymentRejected()             {}
func (NopMetrics) ReceiptTransition(string)     {}
