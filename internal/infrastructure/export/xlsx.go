// Package export writes ledger documents and reports as xlsx workbooks.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"fishledger/internal/core/types"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/registers/stock"
	"fishledger/internal/domain/render"
	"fishledger/internal/domain/reports"
)

// ContentType is the MIME type of xlsx workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// sheet appends rows to the active sheet of a new workbook.
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(title string) *sheet {
	f := excelize.NewFile()
	name := f.GetSheetName(f.GetActiveSheetIndex())
	if title != "" {
		if err := f.SetSheetName(name, title); err == nil {
			name = title
		}
	}
	return &sheet{f: f, name: name}
}

func (s *sheet) add(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.f.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) blank() { s.row++ }

func (s *sheet) bytes() ([]byte, error) {
	defer func() { _ = s.f.Close() }()
	var buf bytes.Buffer
	if err := s.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func money(m types.Money) float64 { return types.RoundCurrency(m).InexactFloat64() }

func kg(q types.Kilograms) float64 { return q.InexactFloat64() }

// InvoiceRenderer renders a sale or purchase, with its live receipt, as an xlsx invoice.
type InvoiceRenderer struct{}

var _ render.Renderer = InvoiceRenderer{}

// ContentType implements render.Renderer.
func (InvoiceRenderer) ContentType() string { return ContentType }

// Extension implements render.Renderer.
func (InvoiceRenderer) Extension() string { return ".xlsx" }

// Render implements render.Renderer.
func (InvoiceRenderer) Render(ctx context.Context, doc render.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := newSheet("Invoice")
	var err error
	switch {
	case doc.Kind == receipt.OwnerSale && doc.Sale != nil:
		err = writeSale(s, doc)
	case doc.Kind == receipt.OwnerPurchase && doc.Purchase != nil:
		err = writePurchase(s, doc)
	default:
		err = fmt.Errorf("nothing to render for %q", doc.Kind)
	}
	if err != nil {
		_ = s.f.Close()
		return nil, err
	}
	return s.bytes()
}

func writeReceipt(s *sheet, rc *receipt.Receipt) error {
	if rc == nil {
		return nil
	}
	if err := s.add("Receipt", rc.Number); err != nil {
		return err
	}
	return s.add("Issued", rc.IssuedAt.Format(dateLayout))
}

func writeSale(s *sheet, doc render.Document) error {
	sl := doc.Sale
	head := [][]any{
		{"Sale invoice", sl.Number},
		{"Date", sl.Date.Format(dateLayout)},
		{"Customer", sl.CustomerID.String()},
	}
	for _, r := range head {
		if err := s.add(r...); err != nil {
			return err
		}
	}
	if err := writeReceipt(s, doc.Receipt); err != nil {
		return err
	}
	s.blank()

	if err := s.add("Line", "Lot", "Quantity, kg", "Price per kg", "Amount"); err != nil {
		return err
	}
	for _, it := range sl.Items {
		if err := s.add(it.LineNo, it.PurchaseID.String(), kg(it.QuantityKg), money(it.PricePerKg), money(it.TotalPrice)); err != nil {
			return err
		}
	}
	s.blank()

	foot := [][]any{
		{"Subtotal", money(sl.Subtotal)},
		{"Discount, %", sl.DiscountPercentage.InexactFloat64()},
		{"Delivery", money(sl.DeliveryFee)},
		{"Total", money(sl.TotalAmount)},
	}
	for _, r := range foot {
		if err := s.add(r...); err != nil {
			return err
		}
	}
	return nil
}

func writePurchase(s *sheet, doc render.Document) error {
	lot := doc.Purchase
	rows := [][]any{
		{"Purchase invoice", lot.Number},
		{"Date", lot.Date.Format(dateLayout)},
		{"Supplier", lot.SupplierID.String()},
		{"Quantity, kg", kg(lot.QuantityKg)},
		{"Price per kg", money(lot.PricePerKg)},
		{"Total", money(lot.TotalCost())},
	}
	for _, r := range rows {
		if err := s.add(r...); err != nil {
			return err
		}
	}
	return writeReceipt(s, doc.Receipt)
}

// StockWorkbook lists lot balances with the reconciliation summary.
func StockWorkbook(lots []stock.LotBalance, rec stock.Reconciliation) ([]byte, error) {
	s := newSheet("Stock")
	if err := s.add("Lot", "Date", "Quantity, kg", "Allocated, kg", "Remaining, kg", "Price per kg", "Remaining value"); err != nil {
		return nil, err
	}
	for _, l := range lots {
		if err := s.add(l.InvoiceNumber, l.PurchaseDate.Format(dateLayout), kg(l.QuantityKg), kg(l.AllocatedKg),
			kg(l.RemainingKg()), money(l.PricePerKg), money(l.RemainingValue())); err != nil {
			return nil, err
		}
	}
	s.blank()

	summary := [][]any{
		{"Purchased, kg", kg(rec.PurchasedKg)},
		{"Sold, kg", kg(rec.SoldKg)},
		{"Allocated, kg", kg(rec.AllocatedKg)},
		{"Discrepancy, kg", kg(rec.Discrepancy)},
	}
	for _, r := range summary {
		if err := s.add(r...); err != nil {
			return nil, err
		}
	}
	return s.bytes()
}

// MarginWorkbook lists margin per recognized sale followed by the period totals.
func MarginWorkbook(report *reports.MarginReport) ([]byte, error) {
	s := newSheet("Margin")
	if err := s.add("Invoice", "Date", "Quantity, kg", "Revenue", "Cost of goods", "Margin", "Outstanding"); err != nil {
		return nil, err
	}
	for _, l := range report.Lines {
		if err := s.add(l.InvoiceNumber, l.SaleDate.Format(dateLayout), kg(l.QuantityKg), money(l.Revenue),
			money(l.CostOfGoods), money(l.Margin), money(l.Outstanding)); err != nil {
			return nil, err
		}
	}
	s.blank()

	summary := [][]any{
		{"Period", report.Period.From.Format(dateLayout), report.Period.To.Format(dateLayout)},
		{"Sales", report.SalesCount},
		{"Excluded sales", report.ExcludedSales},
		{"Revenue", money(report.Revenue)},
		{"Cost of goods", money(report.CostOfGoods)},
		{"Gross margin", money(report.GrossMargin)},
		{"Gross margin, %", money(report.GrossMarginPct)},
		{"Expenses", money(report.Expenses)},
		{"Net margin", money(report.NetMargin)},
		{"Receivables", money(report.Receivables)},
	}
	for _, r := range summary {
		if err := s.add(r...); err != nil {
			return nil, err
		}
	}
	return s.bytes()
}
