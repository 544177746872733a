package entity

import (
	"context"
	"time"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
)

// Document is the base type for numbered business records (purchases, sales).
type Document struct {
	BaseDocument

	// Number is the invoice number (generated, unique within type+year, never reused)
	Number string `db:"invoice_number" json:"invoiceNumber"`

	// Date is the business date of the document
	Date time.Time `db:"doc_date" json:"date"`

	// Notes is an optional free-text comment
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document dated date.
func NewDocument(date time.Time) Document {
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         date,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// AssignNumber sets the generated number. Numbers are immutable once assigned.
func (d *Document) AssignNumber(number string) error {
	if d.Number != "" {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "document number is already assigned").
			WithDetail("number", d.Number)
	}
	d.Number = number
	return nil
}
