// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"fmt"
	"time"
)

// DocumentType identifies a numbered document family.
type DocumentType string

const (
	DocSaleInvoice     DocumentType = "sale_invoice"
	DocPurchaseInvoice DocumentType = "purchase_invoice"
	DocReceipt         DocumentType = "receipt"
)

// DefaultPadWidth is the width of the zero-padded counter.
const DefaultPadWidth = 6

// Config holds numbering configuration of one document type.
type Config struct {
	// Prefix added to all numbers (e.g., "INV", "RCP")
	Prefix string

	// PadWidth is the minimum counter width (default 6)
	PadWidth int
}

var configs = map[DocumentType]Config{
	DocSaleInvoice:     {Prefix: "INV", PadWidth: DefaultPadWidth},
	DocPurchaseInvoice: {Prefix: "PUR", PadWidth: DefaultPadWidth},
	DocReceipt:         {Prefix: "RCP", PadWidth: DefaultPadWidth},
}

// ConfigFor returns the numbering configuration of a document type.
func ConfigFor(t DocumentType) (Config, error) {
	cfg, ok := configs[t]
	if !ok {
		return Config{}, fmt.Errorf("unknown document type %q", t)
	}
	return cfg, nil
}

// Key is the counter key: one sequence per prefix and calendar year.
func (c Config) Key(period time.Time) string {
	return fmt.Sprintf("%s_%s", c.Prefix, period.Format("2006"))
}

// Format renders PREFIX-YEAR-NNNNNN.
func (c Config) Format(period time.Time, num int64) string {
	pad := c.PadWidth
	if pad <= 0 {
		pad = DefaultPadWidth
	}
	return fmt.Sprintf("%s-%s-%0*d", c.Prefix, period.Format("2006"), pad, num)
}

// ParseNumber extracts the counter from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	if _, err := fmt.Sscanf(formatted, "%*[^-]-%*d-%d", &num); err == nil {
		return num
	}
	return -1
}
