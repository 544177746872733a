// Package render defines the document rendering and delivery collaborators.
// The ledger builds attachments lazily; nothing is rendered unless a Notifier reads it.
package render

import (
	"context"

	"fishledger/internal/domain/documents/purchase"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/documents/sale"
)

// Document is what gets rendered: a sale or a purchase with its live receipt, if any.
type Document struct {
	Kind     receipt.OwnerType
	Sale     *sale.Sale
	Purchase *purchase.Lot
	Receipt  *receipt.Receipt
}

// Number is the number printed as the document title.
func (d Document) Number() string {
	switch {
	case d.Receipt != nil:
		return d.Receipt.Number
	case d.Sale != nil:
		return d.Sale.Number
	case d.Purchase != nil:
		return d.Purchase.Number
	}
	return ""
}

// Renderer turns a document into bytes (PDF, spreadsheet, HTML).
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)

	// ContentType and Extension describe the produced bytes.
	ContentType() string
	Extension() string
}

// Attachment is a named document whose bytes are produced on demand.
type Attachment struct {
	Name        string
	ContentType string
	Render      func(ctx context.Context) ([]byte, error)
}

// Notifier delivers an attachment to a recipient and reports success or failure only.
type Notifier interface {
	Send(ctx context.Context, recipient string, attachment Attachment) error
}

// Lazy wraps renderer and doc into an attachment.
func Lazy(renderer Renderer, doc Document) Attachment {
	return Attachment{
		Name:        doc.Number() + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Render: func(ctx context.Context) ([]byte, error) {
			return renderer.Render(ctx, doc)
		},
	}
}
